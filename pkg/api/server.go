package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
)

// ServerConfig API服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// APIServer HTTP API服务器
type APIServer struct {
	server *http.Server
	config ServerConfig
}

// NewAPIServer 创建API服务器
func NewAPIServer(a *agent.TaskDependencyAgent, repo storage.TaskRepository, bus *agent.EventBus, config ServerConfig, version string) *APIServer {
	router := SetupRouter(a, repo, bus, version)

	return &APIServer{
		config: config,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
	}
}

// Start 启动服务器（阻塞直到关闭）
func (s *APIServer) Start() error {
	log.Printf("[API] 服务器监听 %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API服务器启动失败: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
