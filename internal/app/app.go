package app

import (
	"fmt"
	"log"

	"github.com/MuhammadMaaz7/task-dependency-agent/internal/storage"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/config"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/ltm"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/oracle"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/retry"
	pkgstorage "github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
)

// App 装配完成的服务组件集合
type App struct {
	Config    *config.AgentConfig
	Agent     *agent.TaskDependencyAgent
	Repo      pkgstorage.TaskRepository
	Store     ltm.Store
	Bus       *agent.EventBus
	Scheduler *agent.CronScheduler
}

// Build 按配置装配全部组件
// 推理服务密钥缺失不阻止启动，首次推理调用时才会失败
func Build(cfg *config.AgentConfig) (*App, error) {
	// 长期记忆
	var store ltm.Store
	if cfg.Agent.LTM.Enabled {
		fileStore, err := ltm.NewFileStore(cfg.Agent.LTM.File)
		if err != nil {
			return nil, fmt.Errorf("初始化长期记忆失败: %w", err)
		}
		store = fileStore
		log.Printf("[App] 长期记忆已启用: %s", cfg.Agent.LTM.File)
	} else {
		store = ltm.NewMemoryStore()
	}

	// 推理服务
	oracleClient, err := oracle.NewOpenRouterOracle(oracle.OpenRouterConfig{
		BaseURL: cfg.Agent.Oracle.BaseURL,
		APIKey:  cfg.Agent.Oracle.APIKey,
		Model:   cfg.Agent.Oracle.Model,
		Timeout: cfg.Agent.Oracle.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化推理服务失败: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Agent.Oracle.MaxAttempts,
		BaseDelay:   cfg.Agent.Oracle.RetryDelay,
		Multiplier:  2.0,
	}
	adapter := oracle.NewAdapter(oracleClient, policy)

	// 任务存储
	repo, err := storage.NewTaskRepository(cfg.GetDatabaseType(), cfg.GetDatabaseDSN())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("初始化任务存储失败: %w", err)
	}

	bus := agent.NewEventBus(cfg.Agent.General.LogLevel == "debug")

	a := agent.NewTaskDependencyAgent(store, adapter,
		agent.WithName(cfg.Agent.General.Name),
		agent.WithRepository(repo),
		agent.WithEventBus(bus),
		agent.WithRetryPolicy(policy),
	)

	app := &App{
		Config: cfg,
		Agent:  a,
		Repo:   repo,
		Store:  store,
		Bus:    bus,
	}

	if cfg.Agent.Cron.Enabled {
		scheduler := agent.NewCronScheduler(a)
		if err := scheduler.Register(cfg.Agent.Cron.Expr); err != nil {
			app.Close()
			return nil, fmt.Errorf("注册定时调度失败: %w", err)
		}
		app.Scheduler = scheduler
	}

	return app, nil
}

// Close 释放全部组件
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			log.Printf("[App] 关闭事件总线失败: %v", err)
		}
	}
	if a.Repo != nil {
		if err := a.Repo.Close(); err != nil {
			log.Printf("[App] 关闭任务存储失败: %v", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Printf("[App] 关闭长期记忆失败: %v", err)
		}
	}
}
