package dto

import (
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/graph"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// 响应状态（对外导出）
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// AgentResponse 监督方握手响应（对外导出）
type AgentResponse struct {
	RequestID string       `json:"request_id"`
	AgentName string       `json:"agent_name"`
	Status    string       `json:"status"`
	Output    *AgentOutput `json:"output,omitempty"`
	Error     *AgentError  `json:"error,omitempty"`
}

// AgentOutput 成功响应的输出载荷
type AgentOutput struct {
	Result     *graph.ResolutionResult `json:"result"`
	Confidence float64                 `json:"confidence,omitempty"`
	Details    string                  `json:"details,omitempty"`
}

// AgentError 错误响应载荷
type AgentError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAgentSuccessResponse 创建成功握手响应
func NewAgentSuccessResponse(requestID, agentName string, output *AgentOutput) *AgentResponse {
	return &AgentResponse{
		RequestID: requestID,
		AgentName: agentName,
		Status:    StatusSuccess,
		Output:    output,
	}
}

// NewAgentErrorResponse 创建错误握手响应
func NewAgentErrorResponse(requestID, agentName, code, message string) *AgentResponse {
	return &AgentResponse{
		RequestID: requestID,
		AgentName: agentName,
		Status:    StatusError,
		Error:     &AgentError{Code: code, Message: message},
	}
}

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// TaskListResponse 任务列表响应
type TaskListResponse struct {
	Total int         `json:"total"`
	Items []task.Task `json:"items"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}
