package graph

import (
	"container/heap"
	"sort"
)

// Resolve 对规范化任务图执行依赖解析（对外导出）
// 采用Kahn算法变体：就绪集合使用字典序最小堆，保证相同图的输出完全确定；
// Kahn结束后对剩余子图做Tarjan强连通分量分解，规模>1或带自环的分量报告为环，
// 其余剩余任务（依赖了不存在的ID，或传递依赖了环）归入阻塞列表
// 纯计算，无副作用，可被多个请求并发调用
func Resolve(g *NormalizedGraph) *ResolutionResult {
	result := NewEmptyResult()
	if g == nil || len(g.TaskIDs) == 0 {
		return result
	}

	known := make(map[string]struct{}, len(g.TaskIDs))
	for _, id := range g.TaskIDs {
		known[id] = struct{}{}
	}

	// 入度统计每一条声明的依赖边
	// 指向未知ID的边永远不会被消除，引用方自然留在剩余集合中
	inDegree := make(map[string]int, len(g.TaskIDs))
	dependents := make(map[string][]string, len(g.TaskIDs))
	for _, id := range g.TaskIDs {
		deps := g.Edges[id]
		result.Dependencies[id] = append([]string{}, deps...)
		inDegree[id] = len(deps)
		for _, dep := range deps {
			if _, ok := known[dep]; ok {
				dependents[dep] = append(dependents[dep], id)
			}
		}
	}

	// 就绪集合：入度为0的任务，按字典序弹出
	ready := &idHeap{}
	heap.Init(ready)
	for _, id := range g.TaskIDs {
		if inDegree[id] == 0 {
			heap.Push(ready, id)
		}
	}

	placed := make(map[string]struct{}, len(g.TaskIDs))
	for ready.Len() > 0 {
		cur := heap.Pop(ready).(string)
		result.ExecutionOrder = append(result.ExecutionOrder, cur)
		placed[cur] = struct{}{}

		for _, next := range dependents[cur] {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	// 剩余任务：处于环中，或（直接/传递）依赖了环或未知ID
	var remaining []string
	for _, id := range g.TaskIDs {
		if _, ok := placed[id]; !ok {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return result
	}

	cycles, cyclic := detectCycles(g, remaining)
	if cycles != nil {
		result.CyclesDetected = cycles
	}

	for _, id := range remaining {
		if _, inCycle := cyclic[id]; !inCycle {
			result.BlockedTasks = append(result.BlockedTasks, id)
		}
	}
	sort.Strings(result.BlockedTasks)

	return result
}

// detectCycles 在剩余子图上做Tarjan强连通分量分解
// 返回环分组（组内升序，分组按首元素升序）与环成员集合
// 设计决策：同时依赖多个环的任务本身无环，只计入阻塞列表一次
func detectCycles(g *NormalizedGraph, remaining []string) ([][]string, map[string]struct{}) {
	inRemaining := make(map[string]struct{}, len(remaining))
	for _, id := range remaining {
		inRemaining[id] = struct{}{}
	}

	tj := &tarjanState{
		graph:       g,
		inRemaining: inRemaining,
		index:       make(map[string]int, len(remaining)),
		lowlink:     make(map[string]int, len(remaining)),
		onStack:     make(map[string]bool, len(remaining)),
	}

	// 按升序遍历根节点，保证分量发现顺序确定
	roots := append([]string{}, remaining...)
	sort.Strings(roots)
	for _, id := range roots {
		if _, visited := tj.index[id]; !visited {
			tj.strongConnect(id)
		}
	}

	var cycles [][]string
	cyclic := make(map[string]struct{})
	for _, scc := range tj.components {
		if len(scc) == 1 && !hasSelfLoop(g, scc[0]) {
			continue
		}
		sort.Strings(scc)
		cycles = append(cycles, scc)
		for _, id := range scc {
			cyclic[id] = struct{}{}
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})

	return cycles, cyclic
}

// hasSelfLoop 判断任务是否依赖自身（单节点环）
func hasSelfLoop(g *NormalizedGraph, id string) bool {
	for _, dep := range g.Edges[id] {
		if dep == id {
			return true
		}
	}
	return false
}

// tarjanState Tarjan算法的遍历状态（内部使用）
type tarjanState struct {
	graph       *NormalizedGraph
	inRemaining map[string]struct{}
	index       map[string]int
	lowlink     map[string]int
	onStack     map[string]bool
	stack       []string
	counter     int
	components  [][]string
}

func (t *tarjanState) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	// 只沿剩余子图内部的边遍历
	for _, w := range t.graph.Edges[v] {
		if _, ok := t.inRemaining[w]; !ok {
			continue
		}
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, scc)
	}
}

// idHeap 字典序最小堆（内部使用）
type idHeap []string

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x interface{}) { *h = append(*h, x.(string)) }
func (h *idHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
