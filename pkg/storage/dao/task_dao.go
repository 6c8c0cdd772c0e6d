package dao

import (
	"database/sql"
	"encoding/json"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// TaskDAO tasks表的数据访问对象（内部使用）
type TaskDAO struct {
	ID             string         `db:"id"`
	Name           sql.NullString `db:"name"`
	Description    sql.NullString `db:"description"`
	Deadline       sql.NullString `db:"deadline"`
	Status         sql.NullString `db:"status"`
	DependsOn      sql.NullString `db:"depends_on"` // JSON数组格式存储
	ExecutionOrder int            `db:"execution_order"`
	CycleInfo      sql.NullString `db:"cycle_info"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

// ToTask 转换为领域模型
// depends_on 列为NULL时保留 nil 语义（未声明显式依赖）
func (d *TaskDAO) ToTask() (task.Task, error) {
	t := task.Task{
		ID:             d.ID,
		Name:           d.Name.String,
		Description:    d.Description.String,
		Deadline:       d.Deadline.String,
		Status:         d.Status.String,
		ExecutionOrder: d.ExecutionOrder,
	}
	if t.Status == "" {
		t.Status = "pending"
	}

	if d.DependsOn.Valid && d.DependsOn.String != "" {
		var deps []string
		if err := json.Unmarshal([]byte(d.DependsOn.String), &deps); err != nil {
			return task.Task{}, err
		}
		t.DependsOn = deps
	}

	return t, nil
}

// MarshalDependsOn 序列化依赖列表（NULL表示未声明显式依赖）
func MarshalDependsOn(deps []string) (sql.NullString, error) {
	if deps == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(deps)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
