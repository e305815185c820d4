package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/netsession/internal/apperrors"
	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/server/storage"
	"github.com/palemoky/netsession/internal/types"
)

// handleCreateSession 创建并广播会话
func (h *Handler) handleCreateSession(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.CreateSessionPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	reply := func(id string, code int) {
		client.SendMessage(protocol.MustNewMessage(protocol.MsgSessionCreated, protocol.SessionResultPayload{
			SessionName: payload.SessionName,
			SessionID:   id,
			OK:          code == 0,
			Code:        code,
		}))
	}

	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		reply("", protocol.ErrCodeMaintenance)
		return
	}
	if _, exists := client.GetSession(payload.SessionName); exists {
		h.metrics.ObserveOp("create", apperrors.ErrAlreadyInSession)
		reply("", protocol.ErrCodeAlreadyIn)
		return
	}

	hostAddr := payload.HostAddress
	if hostAddr == "" {
		hostAddr = client.GetIP()
	}

	data := &storage.SessionData{
		ID:                    uuid.New().String(),
		Name:                  payload.SessionName,
		OwnerID:               client.GetID(),
		OwnerName:             client.GetName(),
		HostAddress:           hostAddr,
		Settings:              payload.Settings,
		OpenPublicConnections: payload.Settings.NumPublicConnections,
		CreatedAt:             time.Now().UnixNano(),
	}
	err = h.store.SaveSession(ctx, data)
	h.metrics.ObserveOp("create", err)
	if err != nil {
		log.Printf("保存会话失败: %v", err)
		reply("", protocol.ErrCodeStorage)
		return
	}

	client.SetSession(payload.SessionName, data.ID)
	log.Printf("🎮 玩家 %s 创建会话 %s (%s)", client.GetName(), data.Name, data.ID)
	reply(data.ID, 0)
}

// handleStartSession 开始会话
func (h *Handler) handleStartSession(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SessionNamePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	id, err := h.lookup(client, payload.SessionName)
	if err == nil {
		_, err = h.store.MarkStarted(ctx, id, client.GetID())
	}
	h.metrics.ObserveOp("start", err)
	h.sendResult(client, protocol.MsgSessionStarted, payload.SessionName, id, err)
}

// handleFindSessions 搜索会话
func (h *Handler) handleFindSessions(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.FindSessionsPayload](msg)
	if err != nil {
		client.SendMessage(protocol.ReplyTo(msg, protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg)))
		return
	}

	limit := h.maxResults
	if payload.MaxResults > 0 && (limit <= 0 || payload.MaxResults < limit) {
		limit = payload.MaxResults
	}

	sessions, err := h.store.ListSessions(ctx, storage.Filter{
		IsLAN:      payload.IsLAN,
		Presence:   payload.Presence,
		MaxResults: limit,
	})
	h.metrics.ObserveOp("find", err)
	if err != nil {
		log.Printf("搜索会话失败: %v", err)
		client.SendMessage(protocol.ReplyTo(msg, protocol.MustNewMessage(protocol.MsgSessionsFound, protocol.SessionsFoundPayload{OK: false})))
		return
	}

	results := make([]protocol.SessionListItem, 0, len(sessions))
	for _, s := range sessions {
		results = append(results, s.ListItem())
	}
	client.SendMessage(protocol.ReplyTo(msg, protocol.MustNewMessage(protocol.MsgSessionsFound, protocol.SessionsFoundPayload{
		OK:      true,
		Results: results,
	})))
}

// handleJoinSession 加入会话
func (h *Handler) handleJoinSession(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinSessionPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	reply := func(result, connect string) {
		h.metrics.ObserveJoin(result)
		client.SendMessage(protocol.MustNewMessage(protocol.MsgSessionJoined, protocol.SessionJoinedPayload{
			SessionName:   payload.SessionName,
			Result:        result,
			ConnectString: connect,
		}))
	}

	if h.server.IsMaintenanceMode() {
		reply(protocol.JoinResultUnknown, "")
		return
	}
	if _, exists := client.GetSession(payload.SessionName); exists {
		reply(protocol.JoinResultAlreadyInSession, "")
		return
	}

	data, err := h.store.JoinSession(ctx, payload.SessionID, client.GetID())
	h.metrics.ObserveOp("join", err)
	if err != nil {
		reply(joinResultFor(err), "")
		return
	}

	if data.HostAddress == "" {
		if _, err := h.store.LeaveSession(ctx, data.ID, client.GetID()); err != nil {
			log.Printf("释放会话名额失败: %v", err)
		}
		reply(protocol.JoinResultAddressUnresolved, "")
		return
	}

	client.SetSession(payload.SessionName, data.ID)
	log.Printf("🤝 玩家 %s 加入会话 %s (%s)", client.GetName(), data.Name, data.ID)
	reply(protocol.JoinResultSuccess, data.HostAddress)
}

// handleUpdateSession 更新会话设置（只有创建者可以更新）
func (h *Handler) handleUpdateSession(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.UpdateSessionPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	id, err := h.lookup(client, payload.SessionName)
	if err == nil {
		_, err = h.store.UpdateSettings(ctx, id, client.GetID(), payload.Settings)
	}
	h.metrics.ObserveOp("update", err)
	h.sendResult(client, protocol.MsgSessionUpdated, payload.SessionName, id, err)
}

// handleDestroySession 创建者销毁会话，加入者离开会话
func (h *Handler) handleDestroySession(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SessionNamePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	id, err := h.lookup(client, payload.SessionName)
	if err == nil {
		err = h.releaseSession(ctx, client, id)
	}
	if err == nil {
		client.ClearSession(payload.SessionName)
	}
	h.metrics.ObserveOp("destroy", err)
	h.sendResult(client, protocol.MsgSessionDestroyed, payload.SessionName, id, err)
}

// lookup 连接持有的同名会话
func (h *Handler) lookup(client types.ClientInterface, name string) (string, error) {
	id, ok := client.GetSession(name)
	if !ok {
		return "", apperrors.Wrap(apperrors.ErrSessionNotFound, "no session named %q", name)
	}
	return id, nil
}

// releaseSession 创建者删除会话，其他成员释放名额；会话已不存在视为成功
func (h *Handler) releaseSession(ctx context.Context, client types.ClientInterface, id string) error {
	data, err := h.store.LoadSession(ctx, id)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if data.OwnerID == client.GetID() {
		log.Printf("🗑️ 会话 %s (%s) 已销毁", data.Name, id)
		return h.store.DeleteSession(ctx, id)
	}
	_, err = h.store.LeaveSession(ctx, id, client.GetID())
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (h *Handler) sendResult(client types.ClientInterface, msgType protocol.MessageType, name, id string, err error) {
	res := protocol.SessionResultPayload{SessionName: name, SessionID: id, OK: err == nil}
	if err != nil {
		res.Code = errorCode(err)
		log.Printf("会话操作 %s 失败 (玩家 %s): %v", msgType, client.GetName(), err)
	}
	client.SendMessage(protocol.MustNewMessage(msgType, res))
}

func errorCode(err error) int {
	var se *apperrors.SessionError
	if errors.As(err, &se) {
		return se.Code
	}
	return protocol.ErrCodeStorage
}

func joinResultFor(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrSessionFull):
		return protocol.JoinResultSessionFull
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return protocol.JoinResultSessionNotFound
	case errors.Is(err, apperrors.ErrAlreadyInSession):
		return protocol.JoinResultAlreadyInSession
	default:
		return protocol.JoinResultUnknown
	}
}
