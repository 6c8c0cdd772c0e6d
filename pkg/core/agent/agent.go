package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/dto"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/graph"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/ltm"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/oracle"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/retry"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
)

// DefaultAgentName 默认Agent标识
const DefaultAgentName = "task_dependency_agent"

// IntentResolveDependencies 唯一支持的意图
const IntentResolveDependencies = "task.resolve_dependencies"

// TriggerDatabaseUpdate 数据库工作流触发标记
const TriggerDatabaseUpdate = "database_update"

// 握手错误码（对外导出）
const (
	ErrCodeInvalidAgent      = "invalid_agent"
	ErrCodeUnsupportedIntent = "unsupported_intent"
	ErrCodeInvalidInput      = "invalid_input"
	ErrCodeOracleError       = "oracle_error"
	ErrCodeStoreError        = "store_error"
	ErrCodeRuntimeError      = "runtime_error"
)

// 任务解析结果状态
const (
	TaskStatusReady   = "ready"
	TaskStatusBlocked = "blocked"
	TaskStatusCycle   = "cycle"
)

// defaultConfidence 整体解析置信度基线
const defaultConfidence = 0.92

// TaskDependencyAgent 任务依赖解析Agent（对外导出）
// 组合规范化、长期记忆、推理适配器与解析器，
// 对外暴露监督方握手与数据库批处理两条工作流
type TaskDependencyAgent struct {
	name    string
	store   ltm.Store
	adapter *oracle.Adapter
	repo    storage.TaskRepository
	bus     *EventBus
	policy  retry.Policy
}

// Option Agent构造选项
type Option func(*TaskDependencyAgent)

// WithName 覆盖Agent标识
func WithName(name string) Option {
	return func(a *TaskDependencyAgent) { a.name = name }
}

// WithRepository 注入任务存储（数据库工作流依赖）
func WithRepository(repo storage.TaskRepository) Option {
	return func(a *TaskDependencyAgent) { a.repo = repo }
}

// WithEventBus 注入事件总线
func WithEventBus(bus *EventBus) Option {
	return func(a *TaskDependencyAgent) { a.bus = bus }
}

// WithRetryPolicy 覆盖数据库调用的重试策略
func WithRetryPolicy(policy retry.Policy) Option {
	return func(a *TaskDependencyAgent) { a.policy = policy }
}

// NewTaskDependencyAgent 创建Agent实例
func NewTaskDependencyAgent(store ltm.Store, adapter *oracle.Adapter, opts ...Option) *TaskDependencyAgent {
	a := &TaskDependencyAgent{
		name:    DefaultAgentName,
		store:   store,
		adapter: adapter,
		policy:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name 返回Agent标识
func (a *TaskDependencyAgent) Name() string {
	return a.name
}

// HandleRequest 处理监督方握手请求
// 校验身份与意图后分派工作流，所有失败都转换为带稳定错误码的结构化响应，
// 不向传输层抛出异常
func (a *TaskDependencyAgent) HandleRequest(ctx context.Context, req *dto.AgentRequest) (resp *dto.AgentResponse) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Agent] 处理请求 %s 时发生panic: %v", requestID, r)
			resp = dto.NewAgentErrorResponse(requestID, a.name, ErrCodeRuntimeError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if req.AgentName != a.name {
		return dto.NewAgentErrorResponse(requestID, a.name, ErrCodeInvalidAgent,
			fmt.Sprintf("Expected agent '%s' but received '%s'.", a.name, req.AgentName))
	}
	if req.Intent != IntentResolveDependencies {
		return dto.NewAgentErrorResponse(requestID, req.AgentName, ErrCodeUnsupportedIntent,
			fmt.Sprintf("Intent '%s' is not supported. Use ['%s'].", req.Intent, IntentResolveDependencies))
	}

	if req.Input.Trigger == TriggerDatabaseUpdate {
		return a.handleDatabaseTrigger(ctx, requestID)
	}

	tasks, ok := extractTasks(&req.Input)
	if !ok {
		return dto.NewAgentErrorResponse(requestID, req.AgentName, ErrCodeInvalidInput,
			"Provide tasks via input.tasks, input.metadata.extra.tasks, or JSON in input.text.")
	}

	outcome, err := a.resolveTasks(ctx, tasks)
	if err != nil {
		return dto.NewAgentErrorResponse(requestID, req.AgentName, classifyError(err), err.Error())
	}

	a.publishEvent(requestID, outcome)

	return dto.NewAgentSuccessResponse(requestID, req.AgentName, &dto.AgentOutput{
		Result:     outcome.Result,
		Confidence: outcome.Confidence,
		Details:    outcome.Details,
	})
}

// handleDatabaseTrigger 处理数据库触发的自动工作流
func (a *TaskDependencyAgent) handleDatabaseTrigger(ctx context.Context, requestID string) *dto.AgentResponse {
	log.Printf("[Agent] 收到数据库触发，开始数据库工作流: request_id=%s", requestID)

	outcome, err := a.ProcessFromStore(ctx)
	if err != nil {
		return dto.NewAgentErrorResponse(requestID, a.name, classifyError(err), err.Error())
	}

	a.publishEvent(requestID, outcome)

	return dto.NewAgentSuccessResponse(requestID, a.name, &dto.AgentOutput{
		Result:     outcome.Result,
		Confidence: outcome.Confidence,
		Details:    outcome.Details,
	})
}

// Outcome 一次解析的完整产出（对外导出）
type Outcome struct {
	Result     *graph.ResolutionResult
	Confidence float64
	Details    string
	CacheKey   string
	CacheHit   bool
	TaskCount  int
}

// resolveTasks 核心解析流水线：规范化 -> 查长期记忆 -> 推理补全 -> 图解析 -> 回写记忆
func (a *TaskDependencyAgent) resolveTasks(ctx context.Context, tasks []task.Task) (*Outcome, error) {
	if len(tasks) == 0 {
		// 空任务列表是合法输入，返回空结果
		return &Outcome{
			Result:     graph.NewEmptyResult(),
			Confidence: defaultConfidence,
			Details:    "Dependency resolution completed",
		}, nil
	}

	g, cacheKey, err := graph.Normalize(tasks)
	if err != nil {
		return nil, err
	}

	if entry, hit := a.store.Get(cacheKey); hit {
		log.Printf("[Agent] 长期记忆命中: key=%s", shortKey(cacheKey))
		return &Outcome{
			Result:     entry.Result,
			Confidence: defaultConfidence,
			Details:    "Dependency resolution completed (from long-term memory)",
			CacheKey:   cacheKey,
			CacheHit:   true,
			TaskCount:  len(tasks),
		}, nil
	}

	details := "Dependency resolution completed"
	confidence := defaultConfidence

	pending := g.PendingInference()
	if len(pending) > 0 {
		known := make(map[string]struct{}, len(g.TaskIDs))
		for _, id := range g.TaskIDs {
			known[id] = struct{}{}
		}

		inferred, oracleConfidence, inferErr := a.adapter.InferEdges(ctx, pending, known)
		switch {
		case inferErr == nil:
			g.ApplyInferredEdges(inferred)
			if oracleConfidence > 0 {
				confidence = oracleConfidence
			}
		case len(pending) == len(tasks):
			// 全部任务都依赖推理，没有显式边可以退守
			return nil, oracle.NewOracleError(oracle.CodeInferenceFailed,
				"could not infer dependencies", false, inferErr)
		default:
			// 显式边足以构成部分结果，降级继续并附告警
			log.Printf("[Agent] 推理失败，退守显式依赖边: %v", inferErr)
			g.ApplyInferredEdges(nil)
			details = fmt.Sprintf("Partial result: inference failed for %d task(s), resolved with explicit edges only", len(pending))
			confidence = 0
		}
	}

	result := graph.Resolve(g)

	// 只有完整计算后的结果才写入长期记忆
	if err := a.store.Put(cacheKey, result); err != nil {
		log.Printf("[Agent] 长期记忆写入失败: %v", err)
	}

	return &Outcome{
		Result:     result,
		Confidence: confidence,
		Details:    details,
		CacheKey:   cacheKey,
		TaskCount:  len(tasks),
	}, nil
}

// ProcessFromStore 数据库端到端工作流：读取全部任务 -> 解析 -> 批量回写
// 读写均按策略重试，回写事务性由存储层保证
func (a *TaskDependencyAgent) ProcessFromStore(ctx context.Context) (*Outcome, error) {
	if a.repo == nil {
		return nil, &storeError{message: "task repository not configured"}
	}

	var tasks []task.Task
	err := a.policy.Do(ctx, func() error {
		var opErr error
		tasks, opErr = a.repo.GetAllTasks(ctx)
		return opErr
	}, nil)
	if err != nil {
		return nil, &storeError{message: "failed to retrieve tasks from database", cause: err}
	}

	if len(tasks) == 0 {
		log.Printf("[Agent] 数据库中没有任务")
		return &Outcome{
			Result:     graph.NewEmptyResult(),
			Confidence: defaultConfidence,
			Details:    "No tasks found in database",
		}, nil
	}

	log.Printf("[Agent] 开始处理数据库中的 %d 个任务", len(tasks))
	outcome, err := a.resolveTasks(ctx, tasks)
	if err != nil {
		return nil, err
	}

	updates := buildTaskUpdates(outcome.Result)
	err = a.policy.Do(ctx, func() error {
		return a.repo.UpdateTasksBatch(ctx, updates)
	}, nil)
	if err != nil {
		return nil, &storeError{message: "failed to update tasks in database", cause: err}
	}

	log.Printf("[Agent] 数据库工作流完成: 已调度=%d 阻塞=%d 环=%d",
		len(outcome.Result.ExecutionOrder), len(outcome.Result.BlockedTasks), len(outcome.Result.CyclesDetected))
	return outcome, nil
}

// buildTaskUpdates 将解析结果翻译为批量更新载荷
// 可调度任务标记 ready 并带1起始的执行位次；阻塞与环任务位次为0
func buildTaskUpdates(result *graph.ResolutionResult) []storage.TaskUpdate {
	updates := make([]storage.TaskUpdate, 0, len(result.Dependencies))

	for idx, id := range result.ExecutionOrder {
		updates = append(updates, storage.TaskUpdate{
			ID:             id,
			DependsOn:      result.Dependencies[id],
			ExecutionOrder: idx + 1,
			Status:         TaskStatusReady,
		})
	}
	for _, id := range result.BlockedTasks {
		updates = append(updates, storage.TaskUpdate{
			ID:        id,
			DependsOn: result.Dependencies[id],
			Status:    TaskStatusBlocked,
		})
	}
	for _, cycle := range result.CyclesDetected {
		info := strings.Join(cycle, ",")
		for _, id := range cycle {
			updates = append(updates, storage.TaskUpdate{
				ID:        id,
				DependsOn: result.Dependencies[id],
				Status:    TaskStatusCycle,
				CycleInfo: info,
			})
		}
	}

	return updates
}

// publishEvent 发布解析完成事件（尽力而为，失败只记日志）
func (a *TaskDependencyAgent) publishEvent(requestID string, outcome *Outcome) {
	if a.bus == nil {
		return
	}

	event := ResolutionEvent{
		RequestID:    requestID,
		AgentName:    a.name,
		CacheKey:     outcome.CacheKey,
		CacheHit:     outcome.CacheHit,
		TaskCount:    outcome.TaskCount,
		BlockedCount: len(outcome.Result.BlockedTasks),
		CycleCount:   len(outcome.Result.CyclesDetected),
		OccurredAt:   time.Now().UTC(),
	}
	if err := a.bus.PublishResolution(event); err != nil {
		log.Printf("[Agent] 事件发布失败: %v", err)
	}
}

// extractTasks 从输入载荷提取任务列表
// 依次尝试 input.tasks、input.metadata.extra.tasks、input.text 内嵌JSON
func extractTasks(input *dto.AgentInput) ([]task.Task, bool) {
	if input.Tasks != nil {
		return input.Tasks, true
	}

	if input.Metadata != nil && input.Metadata.Extra != nil && input.Metadata.Extra.Tasks != nil {
		return input.Metadata.Extra.Tasks, true
	}

	if input.Text != "" {
		var wrapped struct {
			Tasks []task.Task `json:"tasks"`
		}
		if err := json.Unmarshal([]byte(input.Text), &wrapped); err == nil && wrapped.Tasks != nil {
			return wrapped.Tasks, true
		}
		var list []task.Task
		if err := json.Unmarshal([]byte(input.Text), &list); err == nil {
			return list, true
		}
	}

	return nil, false
}

// classifyError 将内部错误映射为握手错误码
func classifyError(err error) string {
	switch {
	case graph.IsValidationError(err):
		return ErrCodeInvalidInput
	case isStoreError(err):
		return ErrCodeStoreError
	case oracle.IsOracleError(err):
		return ErrCodeOracleError
	default:
		return ErrCodeRuntimeError
	}
}

// shortKey 截断缓存键用于日志
func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
