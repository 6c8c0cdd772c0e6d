package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/dto"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/cli/agentclient"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/cli/output"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

var resolveAgentName string

// resolveCmd resolve命令
var resolveCmd = &cobra.Command{
	Use:   "resolve <tasks-file>",
	Short: "解析任务依赖",
	Long: `读取任务列表文件并提交依赖解析。

文件为JSON格式，可以是任务数组，也可以是 {"tasks": [...]} 包装形式。
文件名为 "-" 时从标准输入读取。

示例：
  tda resolve tasks.json
  cat tasks.json | tda resolve -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := readTasksFile(args[0])
		if err != nil {
			output.Error("读取任务文件失败: %v", err)
			return err
		}

		client := agentclient.New(serverURL)
		resp, err := client.Resolve(&dto.AgentRequest{
			RequestID: uuid.NewString(),
			AgentName: resolveAgentName,
			Intent:    agent.IntentResolveDependencies,
			Input:     dto.AgentInput{Tasks: tasks},
		})
		if err != nil {
			output.Error("请求失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(resp)
		}

		if resp.Status != dto.StatusSuccess {
			output.Error("解析失败 [%s]: %s", resp.Error.Code, resp.Error.Message)
			return fmt.Errorf("%s", resp.Error.Code)
		}

		output.PrintResolution(resp.Output.Result)
		if resp.Output.Details != "" {
			output.Info("%s", resp.Output.Details)
		}
		if resp.Output.Confidence > 0 {
			output.Info("置信度: %.2f", resp.Output.Confidence)
		}
		return nil
	},
}

// readTasksFile 读取任务列表文件
func readTasksFile(path string) ([]task.Task, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Tasks []task.Task `json:"tasks"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Tasks != nil {
		return wrapped.Tasks, nil
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("文件既不是任务数组也不是 {\"tasks\": [...]} 形式: %w", err)
	}
	return tasks, nil
}

func init() {
	resolveCmd.Flags().StringVar(&resolveAgentName, "agent", agent.DefaultAgentName, "目标Agent标识")
}
