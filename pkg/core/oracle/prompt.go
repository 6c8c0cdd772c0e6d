package oracle

import (
	"fmt"
	"strings"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// systemMessage 推理系统提示词
const systemMessage = "You are a task dependency analyzer. Given a list of tasks with descriptions, " +
	"identify which tasks depend on others. A task depends on another if it requires " +
	"the other task's output or completion. Return results in strict JSON format. " +
	"Only use task IDs from the provided list."

// buildPrompt 构造推理提示词
// 逐任务列出 id/name/description，要求模型返回 {"dependencies": {...}} 结构
func buildPrompt(tasks []task.Task) string {
	blocks := make([]string, 0, len(tasks))
	for _, t := range tasks {
		name := t.Name
		if name == "" {
			name = "Unnamed"
		}
		desc := t.Description
		if desc == "" {
			desc = "No description"
		}
		blocks = append(blocks, fmt.Sprintf("- ID: %s\n  Name: %s\n  Description: %s", t.ID, name, desc))
	}

	return fmt.Sprintf(`Analyze these tasks and identify which tasks depend on others. A task depends on another if it requires the other task's output or completion.

Tasks:
%s

Return a JSON object with this exact structure:
{
  "dependencies": {
    "task-id": ["dependency-id-1", "dependency-id-2"],
    ...
  }
}

Only include task IDs that have dependencies. Only use task IDs from the provided list. If a task has no dependencies, omit it from the response.`, strings.Join(blocks, "\n\n"))
}
