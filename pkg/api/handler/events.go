package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
)

// writeTimeout WebSocket单帧写超时
const writeTimeout = 10 * time.Second

// pingInterval 保活Ping间隔
const pingInterval = 30 * time.Second

// EventsHandler 解析事件WebSocket处理器
// 把事件总线上的解析完成事件实时推送给订阅连接
type EventsHandler struct {
	bus      *agent.EventBus
	upgrader websocket.Upgrader
}

// NewEventsHandler 创建EventsHandler
func NewEventsHandler(bus *agent.EventBus) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 监督方可能跨域接入
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream 升级为WebSocket并持续推送解析事件
// GET /api/v1/events/ws
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Events] WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	msgs, err := h.bus.SubscribeResolutions(ctx)
	if err != nil {
		log.Printf("[Events] 订阅事件失败: %v", err)
		return
	}

	// 读循环只负责感知连接关闭
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
				msg.Nack()
				return
			}
			msg.Ack()
		}
	}
}
