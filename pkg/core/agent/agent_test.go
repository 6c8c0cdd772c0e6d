package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/dto"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/ltm"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/oracle"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/retry"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
)

// fastPolicy 测试用快速重试策略
func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 1.0}
}

// newTestAgent 创建带内存存储与固定推理结果的Agent
func newTestAgent(o oracle.Oracle, opts ...Option) *TaskDependencyAgent {
	adapter := oracle.NewAdapter(o, fastPolicy())
	opts = append([]Option{WithRetryPolicy(fastPolicy())}, opts...)
	return NewTaskDependencyAgent(ltm.NewMemoryStore(), adapter, opts...)
}

// newRequest 构造合法握手请求
func newRequest(tasks []task.Task) *dto.AgentRequest {
	return &dto.AgentRequest{
		RequestID: "req-1",
		AgentName: DefaultAgentName,
		Intent:    IntentResolveDependencies,
		Input:     dto.AgentInput{Tasks: tasks},
	}
}

func TestHandleRequest_ExplicitDependencies(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "c", DependsOn: []string{"a", "b"}},
		{ID: "a", DependsOn: []string{}},
		{ID: "b", DependsOn: []string{"a"}},
	}))

	require.Equal(t, dto.StatusSuccess, resp.Status)
	require.NotNil(t, resp.Output)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Output.Result.ExecutionOrder)
	assert.Empty(t, resp.Output.Result.BlockedTasks)
	assert.Empty(t, resp.Output.Result.CyclesDetected)
	assert.Equal(t, 0.92, resp.Output.Confidence)
	assert.Nil(t, resp.Error)
}

func TestHandleRequest_InferenceFillsMissingEdges(t *testing.T) {
	// 缺少显式依赖的任务交给推理补全
	o := &oracle.StaticOracle{
		Dependencies: map[string][]string{"deploy": {"build"}},
		Confidence:   0.8,
	}
	agent := newTestAgent(o)

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "build", DependsOn: []string{}},
		{ID: "deploy", Description: "部署构建产物"},
	}))

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"build", "deploy"}, resp.Output.Result.ExecutionOrder)
	assert.Equal(t, []string{"build"}, resp.Output.Result.Dependencies["deploy"])
	assert.Equal(t, 0.8, resp.Output.Confidence)
	assert.Equal(t, 1, o.Calls)
}

func TestHandleRequest_CacheHitSkipsOracle(t *testing.T) {
	o := &oracle.StaticOracle{Dependencies: map[string][]string{"b": {"a"}}}
	agent := newTestAgent(o)
	tasks := []task.Task{
		{ID: "a", DependsOn: []string{}},
		{ID: "b", Description: "依赖a"},
	}

	first := agent.HandleRequest(context.Background(), newRequest(tasks))
	require.Equal(t, dto.StatusSuccess, first.Status)
	require.Equal(t, 1, o.Calls)

	// 语义相同但顺序打乱的请求命中同一缓存键，不再推理
	second := agent.HandleRequest(context.Background(), newRequest([]task.Task{tasks[1], tasks[0]}))
	require.Equal(t, dto.StatusSuccess, second.Status)
	assert.Equal(t, 1, o.Calls)
	assert.Equal(t, first.Output.Result.ExecutionOrder, second.Output.Result.ExecutionOrder)
	assert.Contains(t, second.Output.Details, "long-term memory")
}

func TestHandleRequest_InvalidAgentName(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest(nil)
	req.AgentName = "someone_else"
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusError, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidAgent, resp.Error.Code)
	assert.Nil(t, resp.Output)
}

func TestHandleRequest_UnsupportedIntent(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest(nil)
	req.Intent = "task.summarize"
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusError, resp.Status)
	assert.Equal(t, ErrCodeUnsupportedIntent, resp.Error.Code)
}

func TestHandleRequest_MissingTasksIsInvalidInput(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := &dto.AgentRequest{
		RequestID: "req-1",
		AgentName: DefaultAgentName,
		Intent:    IntentResolveDependencies,
	}
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusError, resp.Status)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
}

func TestHandleRequest_DuplicateIDsAreInvalidInput(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "a"}, {ID: "a"},
	}))

	require.Equal(t, dto.StatusError, resp.Status)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
}

func TestHandleRequest_EmptyTaskListSucceeds(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{}))

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Empty(t, resp.Output.Result.ExecutionOrder)
	assert.Empty(t, resp.Output.Result.BlockedTasks)
	assert.Empty(t, resp.Output.Result.CyclesDetected)
}

func TestHandleRequest_TasksFromMetadataExtra(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest(nil)
	req.Input.Metadata = &dto.InputMetadata{
		Extra: &dto.MetadataExtra{Tasks: []task.Task{{ID: "a", DependsOn: []string{}}}},
	}
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"a"}, resp.Output.Result.ExecutionOrder)
}

func TestHandleRequest_TasksFromTextJSON(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest(nil)
	req.Input.Text = `{"tasks": [{"id": "a", "depends_on": []}, {"id": "b", "depends_on": ["a"]}]}`
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"a", "b"}, resp.Output.Result.ExecutionOrder)
}

func TestHandleRequest_TextJSONArrayForm(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest(nil)
	req.Input.Text = `[{"id": "x", "depends_on": []}]`
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"x"}, resp.Output.Result.ExecutionOrder)
}

func TestHandleRequest_MalformedTextIsInvalidInput(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest(nil)
	req.Input.Text = "这不是JSON"
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusError, resp.Status)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
}

func TestHandleRequest_OracleFailureWithoutExplicitEdges(t *testing.T) {
	// 全部任务依赖推理且推理耗尽重试，整个请求失败
	o := &oracle.StaticOracle{
		Err: oracle.NewOracleError(oracle.CodeNetworkFailed, "连接被拒绝", true, nil),
	}
	agent := newTestAgent(o)

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "a", Description: "第一步"},
		{ID: "b", Description: "第二步"},
	}))

	require.Equal(t, dto.StatusError, resp.Status)
	assert.Equal(t, ErrCodeOracleError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "could not infer dependencies")
	// 可重试错误应耗尽3次尝试
	assert.Equal(t, 3, o.Calls)
}

func TestHandleRequest_OracleFailurePartialResult(t *testing.T) {
	// 存在显式边时推理失败降级为部分结果
	o := &oracle.StaticOracle{
		Err: oracle.NewOracleError(oracle.CodeAuthFailed, "密钥无效", false, nil),
	}
	agent := newTestAgent(o)

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "a", DependsOn: []string{}},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", Description: "待推理"},
	}))

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Contains(t, resp.Output.Details, "Partial result")
	// 待推理任务按无依赖处理，显式边保留
	assert.Equal(t, []string{"a", "b", "c"}, resp.Output.Result.ExecutionOrder)
	assert.Equal(t, []string{"a"}, resp.Output.Result.Dependencies["b"])
}

func TestHandleRequest_DroppedUnknownInferredEdges(t *testing.T) {
	// 推理结果引用未知ID的边被丢弃，不进入解析
	o := &oracle.StaticOracle{
		Dependencies: map[string][]string{
			"b":     {"a", "phantom"},
			"ghost": {"a"},
		},
	}
	agent := newTestAgent(o)

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "a", DependsOn: []string{}},
		{ID: "b", Description: "依赖a"},
	}))

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"a"}, resp.Output.Result.Dependencies["b"])
	assert.Equal(t, []string{"a", "b"}, resp.Output.Result.ExecutionOrder)
	assert.Empty(t, resp.Output.Result.BlockedTasks)
}

func TestHandleRequest_CycleAndBlockedDiagnostics(t *testing.T) {
	// 环与阻塞是软错误，随成功响应返回诊断字段
	agent := newTestAgent(&oracle.StaticOracle{})

	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a"}},
		{ID: "d", DependsOn: []string{}},
	}))

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"d"}, resp.Output.Result.ExecutionOrder)
	assert.Equal(t, [][]string{{"a", "b"}}, resp.Output.Result.CyclesDetected)
	assert.Equal(t, []string{"c"}, resp.Output.Result.BlockedTasks)
}

// ---------------- 数据库工作流 ----------------

// fakeRepo 内存任务存储替身
type fakeRepo struct {
	tasks    []task.Task
	updates  []storage.TaskUpdate
	getErr   error
	updErr   error
	getCalls int
}

func (r *fakeRepo) GetAllTasks(ctx context.Context) ([]task.Task, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.tasks, nil
}

func (r *fakeRepo) UpdateTasksBatch(ctx context.Context, updates []storage.TaskUpdate) error {
	if r.updErr != nil {
		return r.updErr
	}
	r.updates = updates
	return nil
}

func (r *fakeRepo) SaveTask(ctx context.Context, t task.Task) error {
	r.tasks = append(r.tasks, t)
	return nil
}

func (r *fakeRepo) Close() error { return nil }

func TestProcessFromStore_EndToEnd(t *testing.T) {
	repo := &fakeRepo{tasks: []task.Task{
		{ID: "t1", DependsOn: []string{}},
		{ID: "t2", DependsOn: []string{"t1"}},
		{ID: "t3", DependsOn: []string{"t4"}},
		{ID: "t4", DependsOn: []string{"t3"}},
		{ID: "t5", DependsOn: []string{"t3"}},
	}}
	agent := newTestAgent(&oracle.StaticOracle{}, WithRepository(repo))

	outcome, err := agent.ProcessFromStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, outcome.Result.ExecutionOrder)

	byID := make(map[string]storage.TaskUpdate, len(repo.updates))
	for _, u := range repo.updates {
		byID[u.ID] = u
	}
	require.Len(t, byID, 5)

	// 执行位次从1开始
	assert.Equal(t, 1, byID["t1"].ExecutionOrder)
	assert.Equal(t, 2, byID["t2"].ExecutionOrder)
	assert.Equal(t, TaskStatusReady, byID["t1"].Status)
	assert.Equal(t, TaskStatusReady, byID["t2"].Status)

	assert.Equal(t, TaskStatusCycle, byID["t3"].Status)
	assert.Equal(t, TaskStatusCycle, byID["t4"].Status)
	assert.Equal(t, "t3,t4", byID["t3"].CycleInfo)
	assert.Equal(t, 0, byID["t3"].ExecutionOrder)

	assert.Equal(t, TaskStatusBlocked, byID["t5"].Status)
	assert.Equal(t, 0, byID["t5"].ExecutionOrder)
}

func TestProcessFromStore_EmptyDatabase(t *testing.T) {
	repo := &fakeRepo{}
	agent := newTestAgent(&oracle.StaticOracle{}, WithRepository(repo))

	outcome, err := agent.ProcessFromStore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, outcome.Result.ExecutionOrder)
	assert.Contains(t, outcome.Details, "No tasks found")
	assert.Nil(t, repo.updates)
}

func TestProcessFromStore_RetriesThenFails(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("连接中断")}
	agent := newTestAgent(&oracle.StaticOracle{}, WithRepository(repo))

	_, err := agent.ProcessFromStore(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, repo.getCalls)
	assert.Equal(t, ErrCodeStoreError, classifyError(err))
}

func TestProcessFromStore_UpdateFailureIsStoreError(t *testing.T) {
	repo := &fakeRepo{
		tasks:  []task.Task{{ID: "t1", DependsOn: []string{}}},
		updErr: errors.New("事务冲突"),
	}
	agent := newTestAgent(&oracle.StaticOracle{}, WithRepository(repo))

	_, err := agent.ProcessFromStore(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrCodeStoreError, classifyError(err))
}

func TestHandleRequest_DatabaseTrigger(t *testing.T) {
	repo := &fakeRepo{tasks: []task.Task{
		{ID: "t1", DependsOn: []string{}},
		{ID: "t2", DependsOn: []string{"t1"}},
	}}
	agent := newTestAgent(&oracle.StaticOracle{}, WithRepository(repo))

	req := newRequest(nil)
	req.Input.Trigger = TriggerDatabaseUpdate
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.Equal(t, []string{"t1", "t2"}, resp.Output.Result.ExecutionOrder)
	require.Len(t, repo.updates, 2)
}

func TestHandleRequest_DatabaseTriggerWithoutRepo(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest(nil)
	req.Input.Trigger = TriggerDatabaseUpdate
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusError, resp.Status)
	assert.Equal(t, ErrCodeStoreError, resp.Error.Code)
}

func TestHandleRequest_GeneratesRequestIDWhenMissing(t *testing.T) {
	agent := newTestAgent(&oracle.StaticOracle{})

	req := newRequest([]task.Task{{ID: "a", DependsOn: []string{}}})
	req.RequestID = ""
	resp := agent.HandleRequest(context.Background(), req)

	require.Equal(t, dto.StatusSuccess, resp.Status)
	assert.NotEmpty(t, resp.RequestID)
}

func TestHandleRequest_PublishesResolutionEvent(t *testing.T) {
	bus := NewEventBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := bus.SubscribeResolutions(ctx)
	require.NoError(t, err)

	agent := newTestAgent(&oracle.StaticOracle{}, WithEventBus(bus))
	resp := agent.HandleRequest(context.Background(), newRequest([]task.Task{
		{ID: "a", DependsOn: []string{}},
	}))
	require.Equal(t, dto.StatusSuccess, resp.Status)

	select {
	case msg := <-msgs:
		msg.Ack()
		assert.Contains(t, string(msg.Payload), "req-1")
	case <-time.After(time.Second):
		t.Fatal("未收到解析完成事件")
	}
}
