package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/cli/agentclient"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/cli/output"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

var (
	tasksStatus    string
	tasksLimit     int
	taskName       string
	taskDesc       string
	taskDependsOn  []string
	taskNoDeps     bool
)

// tasksCmd tasks子命令
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "任务库管理命令",
	Long:  `管理数据库中的任务，包括列出、新增和触发端到端解析。`,
}

// tasksListCmd 列出任务
var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出数据库中的任务",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := agentclient.New(serverURL)
		result, err := client.ListTasks(tasksStatus, tasksLimit, 0)
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		if len(result.Items) == 0 {
			output.Info("暂无任务")
			return nil
		}

		table := output.NewTable([]string{"TASK_ID", "NAME", "STATUS", "ORDER", "DEPENDS_ON"})
		for _, t := range result.Items {
			deps := "-"
			if t.DependsOn != nil {
				deps = strings.Join(t.DependsOn, ", ")
				if deps == "" {
					deps = "(无)"
				}
			}
			order := "-"
			if t.ExecutionOrder > 0 {
				order = formatOrder(t.ExecutionOrder)
			}
			table.AddRow([]string{t.ID, t.Name, formatStatus(t.Status), order, deps})
		}
		table.Render()
		return nil
	},
}

// tasksAddCmd 新增任务
var tasksAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "向数据库新增任务",
	Long: `向数据库新增单个任务。

不带 --depends-on 与 --no-deps 时任务依赖留空，等待推理补全。

示例：
  tda tasks add t1 --name "设计" --no-deps
  tda tasks add t2 --name "开发" --depends-on t1
  tda tasks add t3 --desc "部署构建产物"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := task.Task{
			ID:          args[0],
			Name:        taskName,
			Description: taskDesc,
		}
		// 依赖语义：--no-deps 显式声明无依赖，缺省留待推理
		if taskNoDeps {
			t.DependsOn = []string{}
		} else if len(taskDependsOn) > 0 {
			t.DependsOn = taskDependsOn
		}

		client := agentclient.New(serverURL)
		if err := client.SaveTask(t); err != nil {
			output.Error("保存失败: %v", err)
			return err
		}
		output.Success("任务已保存: %s", t.ID)
		return nil
	},
}

// tasksResolveCmd 触发数据库解析
var tasksResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "触发数据库端到端解析工作流",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := agentclient.New(serverURL)
		result, err := client.ResolveFromStore()
		if err != nil {
			output.Error("解析失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		output.PrintResolution(result.Result)
		output.Success("数据库已更新")
		return nil
	},
}

func init() {
	tasksListCmd.Flags().StringVar(&tasksStatus, "status", "", "按状态过滤 (pending/ready/blocked/cycle)")
	tasksListCmd.Flags().IntVar(&tasksLimit, "limit", 20, "返回记录数量限制")

	tasksAddCmd.Flags().StringVar(&taskName, "name", "", "任务名称")
	tasksAddCmd.Flags().StringVar(&taskDesc, "desc", "", "任务描述")
	tasksAddCmd.Flags().StringSliceVar(&taskDependsOn, "depends-on", nil, "显式依赖的任务ID列表")
	tasksAddCmd.Flags().BoolVar(&taskNoDeps, "no-deps", false, "显式声明任务无依赖")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksResolveCmd)
}

// formatStatus 格式化状态显示
func formatStatus(status string) string {
	switch status {
	case "ready":
		return "✅ ready"
	case "blocked":
		return "⛔ blocked"
	case "cycle":
		return "🔁 cycle"
	case "pending", "":
		return "⏳ pending"
	default:
		return status
	}
}

// formatOrder 格式化执行位次
func formatOrder(order int) string {
	return "#" + strconv.Itoa(order)
}
