package graph

// ResolutionResult 依赖解析结果（对外导出）
// 不变式：ExecutionOrder、BlockedTasks 与 CyclesDetected 展开后的任务ID
// 恰好构成图中全部任务ID的一个划分（无重复、无遗漏）
type ResolutionResult struct {
	// Dependencies 解析时实际采用的依赖边（任务ID -> 升序依赖列表）
	Dependencies map[string][]string `json:"dependencies"`
	// ExecutionOrder 拓扑执行顺序，每个任务的依赖都出现在它之前
	ExecutionOrder []string `json:"execution_order"`
	// BlockedTasks 无法调度的任务：依赖了不存在的ID，或（直接/传递）依赖了环
	BlockedTasks []string `json:"blocked_tasks"`
	// CyclesDetected 检测到的循环依赖分组，每组为互相成环的任务ID集合
	CyclesDetected [][]string `json:"cycles_detected"`
}

// NewEmptyResult 创建空解析结果
// 各字段初始化为空集合，序列化后不出现null
func NewEmptyResult() *ResolutionResult {
	return &ResolutionResult{
		Dependencies:   make(map[string][]string),
		ExecutionOrder: []string{},
		BlockedTasks:   []string{},
		CyclesDetected: [][]string{},
	}
}

// HasIssues 判断结果是否包含阻塞任务或循环依赖
func (r *ResolutionResult) HasIssues() bool {
	return len(r.BlockedTasks) > 0 || len(r.CyclesDetected) > 0
}
