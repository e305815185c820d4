package handler

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(_ context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// OnDisconnect 连接断开：销毁它创建的会话，释放它加入的会话名额
func (h *Handler) OnDisconnect(client types.ClientInterface) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	for name, id := range client.Sessions() {
		if err := h.releaseSession(ctx, client, id); err != nil {
			log.Printf("清理会话 %s (%s) 失败: %v", name, id, err)
			continue
		}
		client.ClearSession(name)
	}

	// 兜底：连接未记录但仍登记在该玩家名下的会话
	owned, err := h.store.OwnerSessions(ctx, client.GetID())
	if err != nil {
		log.Printf("查询玩家 %s 的会话失败: %v", client.GetID(), err)
		return
	}
	for _, id := range owned {
		if err := h.store.DeleteSession(ctx, id); err != nil {
			log.Printf("删除会话 %s 失败: %v", id, err)
		}
	}
}
