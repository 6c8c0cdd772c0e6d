package task

import (
	"fmt"
)

// Task 任务模型（对外导出）
// DependsOn 为 nil 表示请求未携带显式依赖（需要走推理流程）
// DependsOn 为空切片表示显式声明"无依赖"
type Task struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name,omitempty" db:"name"`
	Description string   `json:"description,omitempty" db:"description"`
	Deadline    string   `json:"deadline,omitempty" db:"deadline"`
	Status      string   `json:"status,omitempty" db:"status"`
	DependsOn   []string `json:"depends_on,omitempty" db:"-"`
	// ExecutionOrder 由数据库工作流回写，1起始，0表示未调度
	ExecutionOrder int `json:"execution_order,omitempty" db:"execution_order"`
}

// HasExplicitDependencies 判断任务是否携带显式依赖声明
func (t *Task) HasExplicitDependencies() bool {
	return t.DependsOn != nil
}

// ValidateTasks 校验任务列表的请求级约束
// 规则：列表非空、每个任务ID非空、ID在请求内唯一
func ValidateTasks(tasks []Task) error {
	if len(tasks) == 0 {
		return fmt.Errorf("任务列表不能为空")
	}

	seen := make(map[string]struct{}, len(tasks))
	for idx, t := range tasks {
		if t.ID == "" {
			return fmt.Errorf("第%d个任务缺少必填字段 id", idx)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("任务ID重复: %s", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
