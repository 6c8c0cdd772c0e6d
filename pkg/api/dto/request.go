package dto

import (
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// AgentRequest 监督方握手请求（对外导出）
type AgentRequest struct {
	RequestID string     `json:"request_id"`
	AgentName string     `json:"agent_name"`
	Intent    string     `json:"intent"`
	Input     AgentInput `json:"input"`
}

// AgentInput 请求输入载荷
// 任务列表支持三种传递方式：input.tasks、input.metadata.extra.tasks、input.text内嵌JSON
// Trigger 为 "database_update" 时走数据库工作流，忽略内联任务
type AgentInput struct {
	Tasks    []task.Task    `json:"tasks,omitempty"`
	Trigger  string         `json:"trigger,omitempty"`
	Text     string         `json:"text,omitempty"`
	Metadata *InputMetadata `json:"metadata,omitempty"`
}

// InputMetadata 输入元数据
type InputMetadata struct {
	Extra *MetadataExtra `json:"extra,omitempty"`
}

// MetadataExtra 元数据扩展字段
type MetadataExtra struct {
	Tasks []task.Task `json:"tasks,omitempty"`
}

// ListQueryRequest 通用列表查询请求
type ListQueryRequest struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
	Status string `form:"status" binding:"omitempty"`
}

// GetDefaultLimit 获取默认limit
func (r *ListQueryRequest) GetDefaultLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}
