package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage/dao"
)

// TaskRepo 任务存储的SQLite实现（对外导出）
type TaskRepo struct {
	db *sqlx.DB
}

// NewTaskRepo 基于已有连接创建任务存储实例（对外导出）
func NewTaskRepo(db *sqlx.DB) (*TaskRepo, error) {
	repo := &TaskRepo{db: db}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return repo, nil
}

// NewTaskRepoFromDSN 通过DSN创建任务存储实例（对外导出）
func NewTaskRepoFromDSN(dsn string) (*TaskRepo, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if err := configureSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("配置SQLite失败: %w", err)
	}

	return NewTaskRepo(db)
}

// configureSQLite 配置SQLite数据库连接
func configureSQLite(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

// initSchema 初始化数据库表结构
func (r *TaskRepo) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		name TEXT,
		description TEXT,
		deadline TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		depends_on TEXT,
		execution_order INTEGER NOT NULL DEFAULT 0,
		cycle_info TEXT,
		updated_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Close 关闭数据库连接（对外导出）
func (r *TaskRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetAllTasks 查询全部任务
func (r *TaskRepo) GetAllTasks(ctx context.Context) ([]task.Task, error) {
	var rows []dao.TaskDAO
	query := `SELECT id, name, description, deadline, status, depends_on, execution_order, cycle_info, updated_at
		FROM tasks ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.ToTask()
		if err != nil {
			return nil, fmt.Errorf("解析任务 %s 的依赖列表失败: %w", row.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// SaveTask 保存单个任务
func (r *TaskRepo) SaveTask(ctx context.Context, t task.Task) error {
	dependsOn, err := dao.MarshalDependsOn(t.DependsOn)
	if err != nil {
		return fmt.Errorf("序列化依赖列表失败: %w", err)
	}

	status := t.Status
	if status == "" {
		status = "pending"
	}

	query := `INSERT OR REPLACE INTO tasks (id, name, description, deadline, status, depends_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.Deadline, status, dependsOn, time.Now().UTC()); err != nil {
		return fmt.Errorf("保存任务失败: %w", err)
	}
	return nil
}

// UpdateTasksBatch 在单个事务内批量更新任务
// 任一目标ID不存在即回滚整批，保证全有或全无
func (r *TaskRepo) UpdateTasksBatch(ctx context.Context, updates []storage.TaskUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE tasks SET depends_on = ?, execution_order = ?, status = ?, cycle_info = ?, updated_at = ?
		WHERE id = ?`
	now := time.Now().UTC()

	for _, u := range updates {
		if u.ID == "" {
			return fmt.Errorf("批量更新缺少任务ID")
		}

		dependsOn, err := dao.MarshalDependsOn(u.DependsOn)
		if err != nil {
			return fmt.Errorf("序列化任务 %s 的依赖列表失败: %w", u.ID, err)
		}

		res, err := tx.ExecContext(ctx, query,
			dependsOn, u.ExecutionOrder, u.Status, toNullString(u.CycleInfo), now, u.ID)
		if err != nil {
			return fmt.Errorf("更新任务 %s 失败: %w", u.ID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("读取更新行数失败: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("任务 %s 在数据库中不存在", u.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// toNullString 空字符串落为NULL
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
