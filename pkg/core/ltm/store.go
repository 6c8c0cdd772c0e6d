package ltm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/graph"
)

// Entry 缓存条目（对外导出）
// 键为规范化图键，值为完整的解析结果与写入时间
type Entry struct {
	Result    *graph.ResolutionResult `json:"result"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Store 长期记忆存储接口（对外导出）
// 键为规范化图键，精确匹配查找，不做模糊匹配
type Store interface {
	// Get 查找缓存条目
	Get(key string) (*Entry, bool)
	// Put 写入缓存条目（幂等：同键同值重复写入无额外效果）
	Put(key string, result *graph.ResolutionResult) error
	// Clear 清空全部条目（文档化的重置操作）
	Clear() error
	// Close 关闭存储
	Close() error
}

// FileStore 基于JSON文件的长期记忆存储（对外导出）
// 文件内容为 键 -> Entry 的映射，可人工查看，删除文件即强制重算
// 并发安全：读写锁保护；写入先落临时文件再原子改名，半成品永不可见
type FileStore struct {
	path    string
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewFileStore 创建文件存储实例
// 文件不存在时从空状态开始；存在则在启动时全量加载
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		entries: make(map[string]*Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("读取LTM文件失败: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return nil, fmt.Errorf("解析LTM文件失败: %w", err)
		}
	}

	return s, nil
}

// Get 查找缓存条目
func (s *FileStore) Get(key string) (*Entry, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Put 写入缓存条目并持久化
// 只在解析结果完整计算后调用；同键结果确定相同，后写覆盖是安全的
func (s *FileStore) Put(key string, result *graph.ResolutionResult) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &Entry{
		Result:    result,
		UpdatedAt: time.Now().UTC(),
	}
	return s.flushLocked()
}

// Clear 清空全部条目
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	return s.flushLocked()
}

// Close 关闭存储（最后一次落盘）
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked()
}

// Len 返回当前条目数
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// flushLocked 全量落盘（调用方须持有写锁）
// 写临时文件后原子改名，避免进程中断留下半个文件
func (s *FileStore) flushLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建LTM目录失败: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化LTM失败: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入LTM临时文件失败: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("替换LTM文件失败: %w", err)
	}
	return nil
}

// MemoryStore 内存存储实现（对外导出，测试与禁用持久化场景使用）
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore 创建内存存储实例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get 查找缓存条目
func (s *MemoryStore) Get(key string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Put 写入缓存条目
func (s *MemoryStore) Put(key string, result *graph.ResolutionResult) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &Entry{Result: result, UpdatedAt: time.Now().UTC()}
	return nil
}

// Clear 清空全部条目
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	return nil
}

// Close 关闭存储
func (s *MemoryStore) Close() error {
	return nil
}

// Len 返回当前条目数
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
