package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// TopicResolutionCompleted 解析完成事件主题
const TopicResolutionCompleted = "resolution.completed"

// ResolutionEvent 解析完成事件（对外导出）
type ResolutionEvent struct {
	RequestID    string    `json:"request_id"`
	AgentName    string    `json:"agent_name"`
	CacheKey     string    `json:"cache_key"`
	CacheHit     bool      `json:"cache_hit"`
	TaskCount    int       `json:"task_count"`
	BlockedCount int       `json:"blocked_count"`
	CycleCount   int       `json:"cycle_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventBus 进程内事件总线（对外导出）
// 基于Watermill gochannel，解析完成后向订阅方广播事件
type EventBus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewEventBus 创建事件总线
func NewEventBus(debug bool) *EventBus {
	logger := watermill.NewStdLogger(debug, false)
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)
	return &EventBus{pubsub: pubsub, logger: logger}
}

// PublishResolution 发布解析完成事件
func (b *EventBus) PublishResolution(event ResolutionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	return b.pubsub.Publish(TopicResolutionCompleted, msg)
}

// SubscribeResolutions 订阅解析完成事件
func (b *EventBus) SubscribeResolutions(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicResolutionCompleted)
}

// Close 关闭事件总线
func (b *EventBus) Close() error {
	return b.pubsub.Close()
}
