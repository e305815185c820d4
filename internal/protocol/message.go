package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	ID      string          `json:"id,omitempty"` // 请求 ID，回复原样带回
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 大厅 消息类型
const (
	MsgPing MessageType = "ping" // 心跳 ping

	// 会话操作
	MsgCreateSession  MessageType = "create_session"  // 创建会话
	MsgStartSession   MessageType = "start_session"   // 开始会话
	MsgFindSessions   MessageType = "find_sessions"   // 搜索会话
	MsgJoinSession    MessageType = "join_session"    // 加入会话
	MsgUpdateSession  MessageType = "update_session"  // 更新会话设置
	MsgDestroySession MessageType = "destroy_session" // 销毁/离开会话
)

// 大厅 → 客户端 消息类型
const (
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	MsgSessionCreated   MessageType = "session_created"   // 会话创建结果
	MsgSessionStarted   MessageType = "session_started"   // 会话开始结果
	MsgSessionsFound    MessageType = "sessions_found"    // 搜索结果
	MsgSessionJoined    MessageType = "session_joined"    // 加入结果
	MsgSessionUpdated   MessageType = "session_updated"   // 更新结果
	MsgSessionDestroyed MessageType = "session_destroyed" // 销毁结果

	MsgError MessageType = "error" // 错误消息
)

// NewMessage 创建消息，payload 以 JSON 编码
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	msg := &Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ReplyTo 让回复带上请求的 ID
func ReplyTo(req, reply *Message) *Message {
	if req != nil {
		reply.ID = req.ID
	}
	return reply
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *Message {
	return MustNewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: ErrorMessages[code],
	})
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *Message {
	return MustNewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: text,
	})
}
