package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局变量
	serverURL  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "tda",
	Short: "Task Dependency Agent CLI - 任务依赖解析命令行工具",
	Long: `Task Dependency Agent CLI 是任务依赖解析Agent的命令行工具。

支持的功能：
  - 提交任务列表进行依赖解析（显式依赖 + LLM推理补全）
  - 管理数据库中的任务（列出、新增、触发端到端解析）
  - 启动HTTP API服务

使用示例：
  # 从文件解析任务依赖
  tda resolve tasks.json

  # 列出数据库中的任务
  tda tasks list

  # 触发数据库端到端解析
  tda tasks resolve

  # 启动HTTP服务
  tda server start --port 8080`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Agent服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
