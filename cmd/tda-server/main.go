package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MuhammadMaaz7/task-dependency-agent/internal/app"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/config"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "./configs/tda.yaml", "Agent配置文件路径")
	host := flag.String("host", "", "监听地址（覆盖配置文件）")
	port := flag.Int("port", 0, "监听端口（覆盖配置文件）")
	flag.Parse()

	log.Printf("Task Dependency Agent Server v%s", Version)
	log.Printf("配置文件: %s", *configPath)

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *host != "" {
		cfg.Agent.Server.Host = *host
	}
	if *port > 0 {
		cfg.Agent.Server.Port = *port
	}

	// 2. 装配组件
	application, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("装配服务失败: %v", err)
	}
	defer application.Close()

	// 3. 启动定时调度（如启用）
	if application.Scheduler != nil {
		application.Scheduler.Start()
	}

	// 4. 创建并启动API服务器
	serverConfig := api.ServerConfig{
		Host:         cfg.Agent.Server.Host,
		Port:         cfg.Agent.Server.Port,
		ReadTimeout:  cfg.Agent.Server.ReadTimeout,
		WriteTimeout: cfg.Agent.Server.WriteTimeout,
	}
	apiServer := api.NewAPIServer(application.Agent, application.Repo, application.Bus, serverConfig, Version)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API服务器错误: %v", err)
		}
	}()

	log.Printf("✅ Task Dependency Agent started on %s:%d", cfg.Agent.Server.Host, cfg.Agent.Server.Port)

	// 5. 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 6. 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Agent.Server.WriteTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭API服务器失败: %v", err)
	}

	log.Println("✅ 服务已停止")
}
