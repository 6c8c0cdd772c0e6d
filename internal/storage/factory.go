package storage

import (
	"fmt"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage/mysql"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage/postgres"
	pkgsqlite "github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage/sqlite"
)

// NewTaskRepository 按数据库类型创建任务存储（内部方法）
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串
func NewTaskRepository(dbType, dsn string) (storage.TaskRepository, error) {
	switch dbType {
	case "sqlite":
		return pkgsqlite.NewTaskRepoFromDSN(dsn)
	case "mysql":
		return mysql.NewTaskRepoFromDSN(dsn)
	case "postgres", "postgresql":
		return postgres.NewTaskRepoFromDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
