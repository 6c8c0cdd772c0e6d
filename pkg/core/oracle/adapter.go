package oracle

import (
	"context"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/retry"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// Adapter 推理适配器（对外导出）
// 包装底层Oracle：瞬时失败按策略重试，推理结果做引用后校验，
// 保证交给解析器的图在结构上是封闭的
type Adapter struct {
	oracle Oracle
	policy retry.Policy
}

// NewAdapter 创建推理适配器
func NewAdapter(o Oracle, policy retry.Policy) *Adapter {
	return &Adapter{oracle: o, policy: policy}
}

// InferEdges 为缺少显式依赖的任务推理依赖边
// knownIDs 为本次请求内全部任务ID；推理结果中引用未知ID的边被丢弃并记录日志，
// 不因此导致整次推理失败
func (a *Adapter) InferEdges(ctx context.Context, pending []task.Task, knownIDs map[string]struct{}) (map[string][]string, float64, error) {
	if len(pending) == 0 {
		return map[string][]string{}, 0, nil
	}

	var (
		inferred   map[string][]string
		confidence float64
	)
	err := a.policy.Do(ctx, func() error {
		var opErr error
		inferred, confidence, opErr = a.oracle.Infer(ctx, pending)
		return opErr
	}, IsRetryable)
	if err != nil {
		return nil, 0, err
	}

	return a.sanitize(inferred, knownIDs), confidence, nil
}

// sanitize 丢弃引用未知任务ID的推理边
func (a *Adapter) sanitize(inferred map[string][]string, knownIDs map[string]struct{}) map[string][]string {
	cleaned := make(map[string][]string, len(inferred))
	for taskID, deps := range inferred {
		if _, ok := knownIDs[taskID]; !ok {
			logDroppedEdge(taskID, taskID)
			continue
		}
		kept := make([]string, 0, len(deps))
		for _, dep := range deps {
			if _, ok := knownIDs[dep]; !ok {
				logDroppedEdge(taskID, dep)
				continue
			}
			kept = append(kept, dep)
		}
		cleaned[taskID] = kept
	}
	return cleaned
}
