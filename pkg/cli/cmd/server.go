package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MuhammadMaaz7/task-dependency-agent/internal/app"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/cli/output"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/config"
)

var (
	serverPort int
	serverHost string
	configPath string
)

// serverCmd server子命令
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "服务管理命令",
	Long:  `管理Agent HTTP API服务。`,
}

// serverStartCmd 启动服务
var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "启动HTTP API服务",
	Long: `启动任务依赖解析Agent的HTTP API服务。

示例：
  # 使用默认配置启动
  tda server start

  # 指定端口启动
  tda server start --port 8080

  # 指定配置文件启动
  tda server start --config ./configs/tda.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			output.Error("加载配置失败: %v", err)
			return err
		}
		if serverHost != "" {
			cfg.Agent.Server.Host = serverHost
		}
		if serverPort > 0 {
			cfg.Agent.Server.Port = serverPort
		}

		application, err := app.Build(cfg)
		if err != nil {
			output.Error("装配服务失败: %v", err)
			return err
		}
		defer application.Close()

		if application.Scheduler != nil {
			application.Scheduler.Start()
		}

		serverConfig := api.ServerConfig{
			Host:         cfg.Agent.Server.Host,
			Port:         cfg.Agent.Server.Port,
			ReadTimeout:  cfg.Agent.Server.ReadTimeout,
			WriteTimeout: cfg.Agent.Server.WriteTimeout,
		}
		apiServer := api.NewAPIServer(application.Agent, application.Repo, application.Bus, serverConfig, Version)

		go func() {
			if err := apiServer.Start(); err != nil {
				output.Error("API服务器错误: %v", err)
			}
		}()

		output.Success("服务已启动: %s:%d", cfg.Agent.Server.Host, cfg.Agent.Server.Port)

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		output.Info("正在关闭服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Agent.Server.WriteTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			output.Error("关闭API服务器失败: %v", err)
		}

		output.Success("服务已停止")
		return nil
	},
}

func init() {
	serverStartCmd.Flags().StringVar(&configPath, "config", "./configs/tda.yaml", "配置文件路径")
	serverStartCmd.Flags().StringVar(&serverHost, "host", "", "监听地址（覆盖配置文件）")
	serverStartCmd.Flags().IntVar(&serverPort, "port", 0, "监听端口（覆盖配置文件）")

	serverCmd.AddCommand(serverStartCmd)
}
