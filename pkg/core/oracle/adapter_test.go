package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/retry"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy 测试辅助：毫秒级退避策略
func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2.0}
}

func TestAdapter_SkipsWhenNoPendingTasks(t *testing.T) {
	stub := &StaticOracle{Dependencies: map[string][]string{"a": {"b"}}}
	adapter := NewAdapter(stub, fastPolicy())

	edges, _, err := adapter.InferEdges(context.Background(), nil, map[string]struct{}{"a": {}})
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.Equal(t, 0, stub.Calls)
}

func TestAdapter_PassesThroughValidEdges(t *testing.T) {
	stub := &StaticOracle{
		Dependencies: map[string][]string{"b": {"a"}},
		Confidence:   0.9,
	}
	adapter := NewAdapter(stub, fastPolicy())

	known := map[string]struct{}{"a": {}, "b": {}}
	pending := []task.Task{{ID: "a"}, {ID: "b"}}

	edges, confidence, err := adapter.InferEdges(context.Background(), pending, known)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, edges["b"])
	assert.Equal(t, 0.9, confidence)
}

func TestAdapter_DropsUnknownDependencyIDs(t *testing.T) {
	// 场景F：推理结果引用不存在的ID，静默丢弃后继续
	stub := &StaticOracle{
		Dependencies: map[string][]string{
			"b":     {"a", "ghost"},
			"phantom": {"a"},
		},
	}
	adapter := NewAdapter(stub, fastPolicy())

	known := map[string]struct{}{"a": {}, "b": {}}
	edges, _, err := adapter.InferEdges(context.Background(), []task.Task{{ID: "a"}, {ID: "b"}}, known)

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, edges["b"])
	assert.NotContains(t, edges, "phantom")
}

func TestAdapter_RetriesTransientFailures(t *testing.T) {
	calls := 0
	flaky := oracleFunc(func(ctx context.Context, tasks []task.Task) (map[string][]string, float64, error) {
		calls++
		if calls < 3 {
			return nil, 0, NewOracleError(CodeRateLimited, "限流", true, nil)
		}
		return map[string][]string{"b": {"a"}}, 0, nil
	})
	adapter := NewAdapter(flaky, fastPolicy())

	known := map[string]struct{}{"a": {}, "b": {}}
	edges, _, err := adapter.InferEdges(context.Background(), []task.Task{{ID: "a"}, {ID: "b"}}, known)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"a"}, edges["b"])
}

func TestAdapter_AuthFailureIsNotRetried(t *testing.T) {
	calls := 0
	failing := oracleFunc(func(ctx context.Context, tasks []task.Task) (map[string][]string, float64, error) {
		calls++
		return nil, 0, NewOracleError(CodeAuthFailed, "认证失败", false, nil)
	})
	adapter := NewAdapter(failing, fastPolicy())

	_, _, err := adapter.InferEdges(context.Background(), []task.Task{{ID: "a"}}, map[string]struct{}{"a": {}})

	require.Error(t, err)
	assert.True(t, IsOracleError(err))
	assert.Equal(t, 1, calls)
}

// oracleFunc 函数式Oracle实现（测试用）
type oracleFunc func(ctx context.Context, tasks []task.Task) (map[string][]string, float64, error)

func (f oracleFunc) Infer(ctx context.Context, tasks []task.Task) (map[string][]string, float64, error) {
	return f(ctx, tasks)
}
