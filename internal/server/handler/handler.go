package handler

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/server/metrics"
	"github.com/palemoky/netsession/internal/server/storage"
	"github.com/palemoky/netsession/internal/types"
)

// 单条消息处理中访问存储的超时
const storeTimeout = 5 * time.Second

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server     types.ServerInterface
	Store      *storage.RedisStore
	Metrics    *metrics.Metrics
	MaxResults int // 单次搜索返回上限
}

// Handler 消息处理器
type Handler struct {
	server     types.ServerInterface
	store      *storage.RedisStore
	metrics    *metrics.Metrics
	maxResults int
	handlers   map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(ctx context.Context, client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:     deps.Server,
		store:      deps.Store,
		metrics:    deps.Metrics,
		maxResults: deps.MaxResults,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 会话操作
		protocol.MsgCreateSession:  h.handleCreateSession,
		protocol.MsgStartSession:   h.handleStartSession,
		protocol.MsgFindSessions:   h.handleFindSessions,
		protocol.MsgJoinSession:    h.handleJoinSession,
		protocol.MsgUpdateSession:  h.handleUpdateSession,
		protocol.MsgDestroySession: h.handleDestroySession,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	handler, ok := h.handlers[msg.Type]
	if !ok {
		log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
		log.Printf("    消息详情: Payload长度=%d bytes", len(msg.Payload))
		client.SendMessage(protocol.ReplyTo(msg, protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg)))
		return
	}

	h.metrics.ObserveMessage(string(msg.Type))

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	handler(ctx, client, msg)
}
