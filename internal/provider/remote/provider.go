// Package remote 基于大厅服务器的会话服务实现
package remote

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/netsession/internal/delegate"
	"github.com/palemoky/netsession/internal/logger"
	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/session"
	"github.com/palemoky/netsession/internal/transport"
)

// Conn 大厅连接
type Conn interface {
	Send(msgType protocol.MessageType, payload any) error
	SendMessage(msg *protocol.Message) error
}

// PostFunc 把完成通知投递到拥有者线程
type PostFunc func(fn func()) bool

type pendingSearch struct {
	id     string
	search *session.Search
	sentAt time.Time
}

// Provider 通过大厅 WebSocket 协议实现 session.Provider
type Provider struct {
	session.Events

	conn        Conn
	post        PostFunc
	identity    *session.Identity
	hostAddress string
	now         func() time.Time
	lost        *delegate.Multicast[error]

	mu             sync.Mutex
	searches       []pendingSearch   // 等待回复的搜索，按请求 ID 匹配
	connectStrings map[string]string // 会话名 -> 主机地址
}

// New 在已建立的大厅连接上创建会话服务并启动读写协程
func New(client *transport.Client, post PostFunc, hostAddress string) *Provider {
	p := NewWithConn(client, post, &session.Identity{
		UserID:      client.PlayerID,
		DisplayName: client.PlayerName,
	}, hostAddress)
	client.OnMessage = p.HandleMessage
	client.OnClose = p.HandleDisconnect
	client.Start()
	return p
}

// NewWithConn 使用任意连接创建会话服务，消息需由调用方转交 HandleMessage
func NewWithConn(conn Conn, post PostFunc, identity *session.Identity, hostAddress string) *Provider {
	return &Provider{
		Events:         session.NewEvents(),
		conn:           conn,
		post:           post,
		identity:       identity,
		hostAddress:    hostAddress,
		now:            time.Now,
		lost:           delegate.New[error]("OnConnectionLost"),
		connectStrings: make(map[string]string),
	}
}

// Identity 本地玩家身份；只支持 0 号本地用户
func (p *Provider) Identity(localUser int) *session.Identity {
	if localUser != 0 {
		return nil
	}
	return p.identity
}

func (p *Provider) CreateSession(_ *session.Identity, name string, d *session.Descriptor) error {
	return p.conn.Send(protocol.MsgCreateSession, protocol.CreateSessionPayload{
		SessionName: name,
		HostAddress: p.hostAddress,
		Settings:    toWireSettings(d),
	})
}

func (p *Provider) StartSession(name string) error {
	return p.conn.Send(protocol.MsgStartSession, protocol.SessionNamePayload{SessionName: name})
}

func (p *Provider) FindSessions(_ *session.Identity, search *session.Search) error {
	presence := false
	if q, ok := search.QuerySettings[session.SearchPresence]; ok {
		presence = q.Value == "true"
	}

	msg, err := protocol.NewMessage(protocol.MsgFindSessions, protocol.FindSessionsPayload{
		IsLAN:      search.IsLAN,
		MaxResults: search.MaxSearchResults,
		Presence:   presence,
	})
	if err != nil {
		return err
	}
	msg.ID = uuid.NewString()

	// 先入队再发送，避免回复先于入队到达
	p.mu.Lock()
	p.searches = append(p.searches, pendingSearch{id: msg.ID, search: search, sentAt: p.now()})
	p.mu.Unlock()

	if err := p.conn.SendMessage(msg); err != nil {
		p.takeSearch(msg.ID)
		return err
	}
	return nil
}

func (p *Provider) JoinSession(_ *session.Identity, name string, raw *session.RawResult) error {
	return p.conn.Send(protocol.MsgJoinSession, protocol.JoinSessionPayload{
		SessionName: name,
		SessionID:   raw.SessionID,
	})
}

func (p *Provider) UpdateSession(name string, d *session.Descriptor, refresh bool) error {
	return p.conn.Send(protocol.MsgUpdateSession, protocol.UpdateSessionPayload{
		SessionName: name,
		Settings:    toWireSettings(d),
		Refresh:     refresh,
	})
}

func (p *Provider) DestroySession(name string) error {
	return p.conn.Send(protocol.MsgDestroySession, protocol.SessionNamePayload{SessionName: name})
}

// ResolveConnectString 加入成功后得到的主机地址
func (p *Provider) ResolveConnectString(name string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	addr, ok := p.connectStrings[name]
	return addr, ok && addr != ""
}

// HandleMessage 处理大厅回复，完成通知投递到拥有者线程
func (p *Provider) HandleMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgSessionCreated:
		p.completeResult(msg, p.OnCreateSessionComplete().Broadcast)
	case protocol.MsgSessionStarted:
		p.completeResult(msg, p.OnStartSessionComplete().Broadcast)
	case protocol.MsgSessionUpdated:
		p.completeResult(msg, p.OnUpdateSessionComplete().Broadcast)
	case protocol.MsgSessionDestroyed:
		p.completeResult(msg, func(c session.Completion) {
			if c.OK {
				p.mu.Lock()
				delete(p.connectStrings, c.SessionName)
				p.mu.Unlock()
			}
			p.OnDestroySessionComplete().Broadcast(c)
		})
	case protocol.MsgSessionsFound:
		p.completeSearch(msg)
	case protocol.MsgSessionJoined:
		p.completeJoin(msg)
	case protocol.MsgError:
		if payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			logger.LogWarn("大厅错误 %d: %s", payload.Code, payload.Message)
		}
		p.failSearch(msg.ID)
	default:
		logger.LogWarn("忽略未知大厅消息: %s", msg.Type)
	}
}

// OnConnectionLost 大厅连接断开时在拥有者线程上触发
func (p *Provider) OnConnectionLost() *delegate.Multicast[error] {
	return p.lost
}

// HandleDisconnect 连接断开时让等待中的搜索以失败结束，并通知拥有者
func (p *Provider) HandleDisconnect() {
	p.mu.Lock()
	pending := p.searches
	p.searches = nil
	p.mu.Unlock()

	logger.LogWarn("大厅连接已断开，%d 个搜索以失败结束", len(pending))
	for _, ps := range pending {
		p.deliver(func() {
			p.OnFindSessionsComplete().Broadcast(session.SearchCompletion{Search: ps.search, OK: false})
		})
	}
	p.deliver(func() { p.lost.Broadcast(transport.ErrClosed) })
}

func (p *Provider) completeResult(msg *protocol.Message, broadcast func(session.Completion)) {
	payload, err := protocol.ParsePayload[protocol.SessionResultPayload](msg)
	if err != nil {
		logger.LogError("解析 %s 失败: %v", msg.Type, err)
		return
	}
	c := session.Completion{SessionName: payload.SessionName, OK: payload.OK}
	p.deliver(func() { broadcast(c) })
}

// takeSearch 取出 ID 对应的等待中搜索；ID 为空时取最早的一个
func (p *Provider) takeSearch(id string) (pendingSearch, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, ps := range p.searches {
		if id == "" || ps.id == id {
			p.searches = append(p.searches[:i], p.searches[i+1:]...)
			return ps, true
		}
	}
	return pendingSearch{}, false
}

// failSearch 错误回复带有搜索请求的 ID 时让该搜索以失败结束
func (p *Provider) failSearch(id string) {
	if id == "" {
		return
	}
	ps, ok := p.takeSearch(id)
	if !ok {
		return
	}
	logger.LogWarn("搜索 %s 被大厅拒绝", id)
	p.deliver(func() {
		p.OnFindSessionsComplete().Broadcast(session.SearchCompletion{Search: ps.search, OK: false})
	})
}

func (p *Provider) completeSearch(msg *protocol.Message) {
	ps, found := p.takeSearch(msg.ID)
	if !found {
		logger.LogWarn("收到无对应请求的搜索结果")
		return
	}

	payload, err := protocol.ParsePayload[protocol.SessionsFoundPayload](msg)
	ok := err == nil && payload.OK

	search := ps.search
	results := make([]*session.RawResult, 0)
	if ok {
		ping := bucketPing(p.now().Sub(ps.sentAt).Milliseconds(), search.PingBucketSize)
		for _, item := range payload.Results {
			results = append(results, &session.RawResult{
				SessionID:                item.SessionID,
				OwnerID:                  item.OwnerID,
				OwnerName:                item.OwnerName,
				Session:                  fromWireSettings(item.Settings),
				NumOpenPublicConnections: item.NumOpenPublicConnections,
				PingInMs:                 ping,
				PingKnown:                true,
			})
		}
	}

	p.deliver(func() {
		if ok {
			search.Results = results
		}
		p.OnFindSessionsComplete().Broadcast(session.SearchCompletion{Search: search, OK: ok})
	})
}

func (p *Provider) completeJoin(msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SessionJoinedPayload](msg)
	if err != nil {
		logger.LogError("解析加入结果失败: %v", err)
		return
	}

	result := joinResultFromWire(payload.Result)
	if result == session.JoinSuccess {
		p.mu.Lock()
		p.connectStrings[payload.SessionName] = payload.ConnectString
		p.mu.Unlock()
	}

	c := session.JoinCompletion{SessionName: payload.SessionName, Result: result}
	p.deliver(func() { p.OnJoinSessionComplete().Broadcast(c) })
}

func (p *Provider) deliver(fn func()) {
	if !p.post(fn) {
		logger.LogWarn("投递完成通知失败，拥有者线程已停止")
	}
}
