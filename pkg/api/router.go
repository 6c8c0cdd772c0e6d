package api

import (
	"github.com/gin-gonic/gin"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/handler"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/middleware"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
)

// SetupRouter 装配全部路由
func SetupRouter(a *agent.TaskDependencyAgent, repo storage.TaskRepository, bus *agent.EventBus, version string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), middleware.Recovery(), middleware.CORS())

	healthHandler := handler.NewHealthHandler(a, version)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	v1 := r.Group("/api/v1")
	{
		agentHandler := handler.NewAgentHandler(a)
		v1.POST("/agent/resolve", agentHandler.Resolve)

		taskHandler := handler.NewTaskHandler(repo, a)
		v1.GET("/tasks", taskHandler.List)
		v1.POST("/tasks", taskHandler.Create)
		v1.POST("/tasks/resolve", taskHandler.ResolveFromStore)

		if bus != nil {
			eventsHandler := handler.NewEventsHandler(bus)
			v1.GET("/events/ws", eventsHandler.Stream)
		}
	}

	return r
}
