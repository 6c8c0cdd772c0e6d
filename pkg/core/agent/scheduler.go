package agent

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// CronScheduler 定时调度器（对外导出）
// 按Cron表达式周期性执行数据库工作流，让数据库中新增的任务
// 无需外部触发也能得到依赖解析
type CronScheduler struct {
	cron    *cron.Cron
	agent   *TaskDependencyAgent
	entryID cron.EntryID
	started bool
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(a *TaskDependencyAgent) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron:   cron.New(cron.WithSeconds()), // 支持秒级精度
		agent:  a,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register 注册解析作业
func (cs *CronScheduler) Register(cronExpr string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cronExpr == "" {
		return fmt.Errorf("未设置Cron表达式")
	}

	// 验证Cron表达式（使用Parser支持秒级精度）
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cronExpr); err != nil {
		return fmt.Errorf("Cron表达式无效: %w", err)
	}

	entryID, err := cs.cron.AddFunc(cronExpr, cs.runOnce)
	if err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}
	cs.entryID = entryID

	log.Printf("✅ [Cron调度器] 已注册解析作业: CronExpr=%s", cronExpr)
	return nil
}

// runOnce 执行一轮数据库工作流（内部方法）
func (cs *CronScheduler) runOnce() {
	log.Printf("🕐 [Cron调度器] 触发数据库解析工作流")

	outcome, err := cs.agent.ProcessFromStore(cs.ctx)
	if err != nil {
		log.Printf("❌ [Cron调度器] 数据库工作流失败: %v", err)
		return
	}
	log.Printf("✅ [Cron调度器] 数据库工作流完成: 已调度=%d 阻塞=%d 环=%d",
		len(outcome.Result.ExecutionOrder), len(outcome.Result.BlockedTasks), len(outcome.Result.CyclesDetected))
}

// Start 启动定时调度器
func (cs *CronScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.started {
		return
	}
	cs.cron.Start()
	cs.started = true
	log.Println("✅ [Cron调度器] 已启动")
}

// Stop 停止定时调度器
func (cs *CronScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.started {
		cs.cancel()
		return
	}
	cs.cron.Stop()
	cs.cancel()
	cs.started = false
	log.Println("✅ [Cron调度器] 已停止")
}
