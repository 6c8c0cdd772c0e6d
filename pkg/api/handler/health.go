package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/dto"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	agent     *agent.TaskDependencyAgent
	version   string
	startTime time.Time
}

// NewHealthHandler 创建HealthHandler
func NewHealthHandler(a *agent.TaskDependencyAgent, version string) *HealthHandler {
	return &HealthHandler{
		agent:     a,
		version:   version,
		startTime: time.Now(),
	}
}

// Health 存活检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}))
}

// Ready 就绪检查（返回Agent标识，供监督方发现）
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{
		"status": "ok",
		"agent":  h.agent.Name(),
	}))
}
