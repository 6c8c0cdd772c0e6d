package storage

import (
	"context"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// TaskUpdate 任务批量更新载荷（对外导出）
type TaskUpdate struct {
	ID             string   `json:"id"`
	DependsOn      []string `json:"depends_on"`
	ExecutionOrder int      `json:"execution_order"` // 1起始的执行位次，0表示未调度
	Status         string   `json:"status"`
	CycleInfo      string   `json:"cycle_info,omitempty"`
}

// TaskRepository 任务存储接口（对外导出）
// UpdateTasksBatch 要求事务性：任一条更新失败（含目标ID不存在）则整批回滚
type TaskRepository interface {
	// GetAllTasks 查询全部任务
	GetAllTasks(ctx context.Context) ([]task.Task, error)
	// UpdateTasksBatch 在单个事务内批量更新任务
	UpdateTasksBatch(ctx context.Context, updates []TaskUpdate) error
	// SaveTask 保存（插入或覆盖）单个任务
	SaveTask(ctx context.Context, t task.Task) error
	// Close 关闭数据库连接
	Close() error
}
