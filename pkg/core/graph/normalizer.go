package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// ValidationError 请求校验错误（对外导出）
// 由调用方翻译为 invalid_input 错误响应，不参与重试
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError 创建校验错误
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError 判断错误是否为校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NormalizedGraph 规范化任务图（对外导出）
// 与输入顺序无关：TaskIDs 升序，每个依赖列表升序去重
// Edges 中值为 nil 表示该任务未携带显式依赖，待推理补全
type NormalizedGraph struct {
	TaskIDs []string
	Edges   map[string][]string
	Tasks   map[string]task.Task
}

// Normalize 规范化任务列表并派生缓存键
// 返回规范化图与缓存键；重复ID、空ID、空依赖项均返回 ValidationError
func Normalize(tasks []task.Task) (*NormalizedGraph, string, error) {
	if err := task.ValidateTasks(tasks); err != nil {
		return nil, "", &ValidationError{Message: err.Error()}
	}

	g := &NormalizedGraph{
		TaskIDs: make([]string, 0, len(tasks)),
		Edges:   make(map[string][]string, len(tasks)),
		Tasks:   make(map[string]task.Task, len(tasks)),
	}

	for _, t := range tasks {
		g.TaskIDs = append(g.TaskIDs, t.ID)
		g.Tasks[t.ID] = t

		if t.DependsOn == nil {
			// 无显式依赖，保留 nil 语义
			g.Edges[t.ID] = nil
			continue
		}

		deps := make([]string, 0, len(t.DependsOn))
		seen := make(map[string]struct{}, len(t.DependsOn))
		for _, dep := range t.DependsOn {
			if dep == "" {
				return nil, "", NewValidationError("任务 %s 的依赖项不能为空字符串", t.ID)
			}
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		g.Edges[t.ID] = deps
	}

	sort.Strings(g.TaskIDs)

	return g, g.CacheKey(), nil
}

// cacheKeyEntry 缓存键序列化的单元：(任务ID, 升序依赖列表)
type cacheKeyEntry struct {
	ID   string   `json:"id"`
	Deps []string `json:"deps"`
}

// CacheKey 派生缓存键
// 对 (任务ID, 升序依赖列表) 的确定性JSON序列化取SHA-256
// JSON转义保证ID含任意字符（含分隔符）时不同图的键不碰撞；
// 未携带显式依赖的任务序列化为null，与显式声明"无依赖"的[]区分
func (g *NormalizedGraph) CacheKey() string {
	entries := make([]cacheKeyEntry, 0, len(g.TaskIDs))
	for _, id := range g.TaskIDs {
		entries = append(entries, cacheKeyEntry{ID: id, Deps: g.Edges[id]})
	}

	// 字符串与字符串切片的序列化不会失败
	payload, _ := json.Marshal(entries)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// PendingInference 返回未携带显式依赖、需要推理补全的任务（按ID升序）
func (g *NormalizedGraph) PendingInference() []task.Task {
	var pending []task.Task
	for _, id := range g.TaskIDs {
		if g.Edges[id] == nil {
			pending = append(pending, g.Tasks[id])
		}
	}
	return pending
}

// ApplyInferredEdges 将推理得到的依赖边写入待推理任务
// 只补全 Edges 为 nil 的任务；推理结果中未覆盖的任务按"无依赖"处理
// 依赖列表会升序去重，保持图的规范化性质
func (g *NormalizedGraph) ApplyInferredEdges(inferred map[string][]string) {
	for _, id := range g.TaskIDs {
		if g.Edges[id] != nil {
			continue
		}

		deps := inferred[id]
		cleaned := make([]string, 0, len(deps))
		seen := make(map[string]struct{}, len(deps))
		for _, dep := range deps {
			if dep == "" {
				continue
			}
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			cleaned = append(cleaned, dep)
		}
		sort.Strings(cleaned)
		g.Edges[id] = cleaned
	}
}
