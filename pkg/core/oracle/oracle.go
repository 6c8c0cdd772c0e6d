package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// 错误码（对外导出）
const (
	CodeAuthFailed      = "auth_failed"       // 认证失败（不重试）
	CodeRateLimited     = "rate_limited"      // 触发限流（可重试）
	CodeNetworkFailed   = "network_failed"    // 网络错误（可重试）
	CodeMalformedOutput = "malformed_output"  // 返回内容不是预期JSON（不重试）
	CodeInferenceFailed = "inference_failed"  // 其他推理失败
)

// OracleError 推理服务错误（对外导出）
type OracleError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *OracleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("推理服务错误[%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("推理服务错误[%s]: %s", e.Code, e.Message)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// NewOracleError 创建推理服务错误
func NewOracleError(code, message string, retryable bool, err error) *OracleError {
	return &OracleError{Code: code, Message: message, Retryable: retryable, Err: err}
}

// IsOracleError 判断错误是否为推理服务错误
func IsOracleError(err error) bool {
	var oe *OracleError
	return errors.As(err, &oe)
}

// IsRetryable 判断推理错误是否值得重试
func IsRetryable(err error) bool {
	var oe *OracleError
	if errors.As(err, &oe) {
		return oe.Retryable
	}
	return false
}

// Oracle 依赖推理服务接口（对外导出）
// 输入为缺少显式依赖的任务列表，输出为 任务ID -> 依赖任务ID列表 的映射
// 与置信度（无法提供置信度的实现返回0）
// 实现只负责调用与解析，引用校验由 Adapter 统一处理
type Oracle interface {
	Infer(ctx context.Context, tasks []task.Task) (map[string][]string, float64, error)
}

// StaticOracle 固定结果的推理实现（对外导出，测试替身）
type StaticOracle struct {
	Dependencies map[string][]string
	Confidence   float64
	Err          error
	// Calls 记录被调用次数，便于断言缓存命中后不再推理
	Calls int
}

// Infer 返回预置结果
func (s *StaticOracle) Infer(ctx context.Context, tasks []task.Task) (map[string][]string, float64, error) {
	s.Calls++
	if s.Err != nil {
		return nil, 0, s.Err
	}
	return s.Dependencies, s.Confidence, nil
}
