package output

import (
	"fmt"
	"strings"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/graph"
)

// PrintResolution 渲染依赖解析结果
// 执行顺序以表格展示，阻塞任务与环作为诊断信息附在其后
func PrintResolution(result *graph.ResolutionResult) {
	if len(result.ExecutionOrder) == 0 && len(result.BlockedTasks) == 0 && len(result.CyclesDetected) == 0 {
		Info("没有可解析的任务")
		return
	}

	if len(result.ExecutionOrder) > 0 {
		table := NewTable([]string{"#", "TASK_ID", "DEPENDS_ON"})
		for idx, id := range result.ExecutionOrder {
			deps := "-"
			if d := result.Dependencies[id]; len(d) > 0 {
				deps = strings.Join(d, ", ")
			}
			table.AddRow([]string{fmt.Sprintf("%d", idx+1), id, deps})
		}
		table.Render()
	}

	if len(result.BlockedTasks) > 0 {
		Warning("阻塞任务: %s", strings.Join(result.BlockedTasks, ", "))
	}
	for _, cycle := range result.CyclesDetected {
		Error("检测到循环依赖: %s", strings.Join(cycle, " -> "))
	}
}
