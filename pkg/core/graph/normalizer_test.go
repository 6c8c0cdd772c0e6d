package graph

import (
	"testing"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_KeyInvariantUnderReordering(t *testing.T) {
	// 任务顺序与依赖顺序不同，但结构相同
	tasksA := []task.Task{
		{ID: "build", DependsOn: []string{"design"}},
		{ID: "test", DependsOn: []string{"build", "design"}},
		{ID: "design", DependsOn: []string{}},
	}
	tasksB := []task.Task{
		{ID: "design", DependsOn: []string{}},
		{ID: "test", DependsOn: []string{"design", "build"}},
		{ID: "build", DependsOn: []string{"design"}},
	}

	gA, keyA, err := Normalize(tasksA)
	require.NoError(t, err)
	gB, keyB, err := Normalize(tasksB)
	require.NoError(t, err)

	assert.Equal(t, keyA, keyB)
	assert.Equal(t, gA.TaskIDs, gB.TaskIDs)
	assert.Equal(t, gA.Edges, gB.Edges)
}

func TestNormalize_SortsAndDeduplicatesDependencies(t *testing.T) {
	tasks := []task.Task{
		{ID: "c", DependsOn: []string{"b", "a", "b"}},
		{ID: "a", DependsOn: []string{}},
		{ID: "b", DependsOn: []string{}},
	}

	g, _, err := Normalize(tasks)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, g.TaskIDs)
	assert.Equal(t, []string{"a", "b"}, g.Edges["c"])
}

func TestNormalize_DistinguishesMissingFromEmptyDependencies(t *testing.T) {
	// 未声明依赖（待推理）与显式声明"无依赖"必须产生不同的缓存键
	withNil := []task.Task{{ID: "a"}}
	withEmpty := []task.Task{{ID: "a", DependsOn: []string{}}}

	_, keyNil, err := Normalize(withNil)
	require.NoError(t, err)
	_, keyEmpty, err := Normalize(withEmpty)
	require.NoError(t, err)

	assert.NotEqual(t, keyNil, keyEmpty)
}

func TestNormalize_KeyDistinguishesIDsContainingSeparators(t *testing.T) {
	// 依赖["b","c"]与单个依赖"b,c"是不同的图，解析结果也不同，
	// 缓存键必须区分，否则第二个请求会命中第一个的缓存结果
	twoDeps := []task.Task{
		{ID: "a", DependsOn: []string{"b", "c"}},
		{ID: "b", DependsOn: []string{}},
		{ID: "c", DependsOn: []string{}},
	}
	oneOddDep := []task.Task{
		{ID: "a", DependsOn: []string{"b,c"}},
		{ID: "b", DependsOn: []string{}},
		{ID: "c", DependsOn: []string{}},
	}

	gA, keyA, err := Normalize(twoDeps)
	require.NoError(t, err)
	gB, keyB, err := Normalize(oneOddDep)
	require.NoError(t, err)

	assert.NotEqual(t, keyA, keyB)

	// 结果确实不同："b,c"不是已知任务，a应被阻塞
	assert.Equal(t, []string{"b", "c", "a"}, Resolve(gA).ExecutionOrder)
	assert.Equal(t, []string{"a"}, Resolve(gB).BlockedTasks)
}

func TestNormalize_KeyDistinguishesShiftedIDBoundaries(t *testing.T) {
	// ID与依赖列表的边界字符不同但拼接相同的图不得同键
	left := []task.Task{{ID: "a:b", DependsOn: []string{}}}
	right := []task.Task{{ID: "a", DependsOn: []string{"b"}}}

	_, keyLeft, err := Normalize(left)
	require.NoError(t, err)
	_, keyRight, err := Normalize(right)
	require.NoError(t, err)

	assert.NotEqual(t, keyLeft, keyRight)
}

func TestNormalize_RejectsDuplicateIDs(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", DependsOn: []string{}},
		{ID: "a", DependsOn: []string{}},
	}

	_, _, err := Normalize(tasks)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestNormalize_RejectsEmptyID(t *testing.T) {
	_, _, err := Normalize([]task.Task{{ID: ""}})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestNormalize_RejectsEmptyDependencyEntry(t *testing.T) {
	_, _, err := Normalize([]task.Task{{ID: "a", DependsOn: []string{""}}})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestNormalize_RejectsEmptyTaskList(t *testing.T) {
	_, _, err := Normalize(nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestPendingInference_ReturnsOnlyTasksWithoutExplicitEdges(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Description: "准备环境"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", Description: "收尾"},
	}

	g, _, err := Normalize(tasks)
	require.NoError(t, err)

	pending := g.PendingInference()
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "c", pending[1].ID)
}

func TestApplyInferredEdges_FillsOnlyPendingTasks(t *testing.T) {
	tasks := []task.Task{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c"},
	}

	g, _, err := Normalize(tasks)
	require.NoError(t, err)

	g.ApplyInferredEdges(map[string][]string{
		"a": {},
		"b": {"c"}, // b已有显式依赖，推理结果应被忽略
		"c": {"b", "a", "b"},
	})

	assert.Equal(t, []string{}, g.Edges["a"])
	assert.Equal(t, []string{"a"}, g.Edges["b"])
	assert.Equal(t, []string{"a", "b"}, g.Edges["c"])
}

func TestApplyInferredEdges_UncoveredTaskDefaultsToNoDependencies(t *testing.T) {
	g, _, err := Normalize([]task.Task{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)

	g.ApplyInferredEdges(map[string][]string{"b": {"a"}})

	assert.Equal(t, []string{}, g.Edges["a"])
	assert.Equal(t, []string{"a"}, g.Edges["b"])
}
