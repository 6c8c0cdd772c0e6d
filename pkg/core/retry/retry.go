package retry

import (
	"context"
	"time"
)

// Policy 重试策略（对外导出）
// 封装外部调用（推理服务、数据库）的指数退避重试，避免各调用点重复实现
type Policy struct {
	MaxAttempts int           // 最大尝试次数（含首次）
	BaseDelay   time.Duration // 首次重试前的等待时间
	Multiplier  float64       // 退避倍率
}

// DefaultPolicy 默认策略：3次尝试，基础延迟1秒，每次翻倍
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2.0,
	}
}

// Do 执行操作直至成功或尝试耗尽
// retryable 为 nil 时所有错误均重试；ctx 取消立即终止并返回 ctx.Err()
func (p Policy) Do(ctx context.Context, op func() error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return lastErr
}
