package session

import "github.com/palemoky/netsession/internal/delegate"

// Completion 创建 / 开始 / 更新 / 销毁的完成通知
type Completion struct {
	SessionName string
	OK          bool
}

// SearchCompletion 搜索完成通知，Search 即发起时传入的查询
type SearchCompletion struct {
	Search *Search
	OK     bool
}

// JoinResult 加入会话的结果码
type JoinResult int

const (
	JoinSuccess JoinResult = iota
	JoinSessionIsFull
	JoinSessionDoesNotExist
	JoinCouldNotRetrieveAddress
	JoinAlreadyInSession
	JoinUnknownError
)

func (r JoinResult) String() string {
	switch r {
	case JoinSuccess:
		return "Success"
	case JoinSessionIsFull:
		return "SessionIsFull"
	case JoinSessionDoesNotExist:
		return "SessionDoesNotExist"
	case JoinCouldNotRetrieveAddress:
		return "CouldNotRetrieveAddress"
	case JoinAlreadyInSession:
		return "AlreadyInSession"
	default:
		return "UnknownError"
	}
}

// JoinCompletion 加入完成通知
type JoinCompletion struct {
	SessionName string
	Result      JoinResult
}

// Provider 在线会话服务。
//
// Begin 类方法返回错误表示请求没有发出，之后不会有完成通知。
// 完成通知在拥有者的逻辑线程上触发，注册的回调不会被自动清除。
type Provider interface {
	Identity(localUser int) *Identity

	CreateSession(id *Identity, name string, d *Descriptor) error
	StartSession(name string) error
	FindSessions(id *Identity, search *Search) error
	JoinSession(id *Identity, name string, raw *RawResult) error
	UpdateSession(name string, d *Descriptor, refresh bool) error
	DestroySession(name string) error
	ResolveConnectString(name string) (string, bool)

	OnCreateSessionComplete() *delegate.Multicast[Completion]
	OnStartSessionComplete() *delegate.Multicast[Completion]
	OnFindSessionsComplete() *delegate.Multicast[SearchCompletion]
	OnJoinSessionComplete() *delegate.Multicast[JoinCompletion]
	OnUpdateSessionComplete() *delegate.Multicast[Completion]
	OnDestroySessionComplete() *delegate.Multicast[Completion]
}

// Events 完成事件集合，供 Provider 实现嵌入
type Events struct {
	create  *delegate.Multicast[Completion]
	start   *delegate.Multicast[Completion]
	find    *delegate.Multicast[SearchCompletion]
	join    *delegate.Multicast[JoinCompletion]
	update  *delegate.Multicast[Completion]
	destroy *delegate.Multicast[Completion]
}

// NewEvents 创建完成事件集合
func NewEvents() Events {
	return Events{
		create:  delegate.New[Completion]("OnCreateSessionComplete"),
		start:   delegate.New[Completion]("OnStartSessionComplete"),
		find:    delegate.New[SearchCompletion]("OnFindSessionsComplete"),
		join:    delegate.New[JoinCompletion]("OnJoinSessionComplete"),
		update:  delegate.New[Completion]("OnUpdateSessionComplete"),
		destroy: delegate.New[Completion]("OnDestroySessionComplete"),
	}
}

func (e *Events) OnCreateSessionComplete() *delegate.Multicast[Completion]      { return e.create }
func (e *Events) OnStartSessionComplete() *delegate.Multicast[Completion]       { return e.start }
func (e *Events) OnFindSessionsComplete() *delegate.Multicast[SearchCompletion] { return e.find }
func (e *Events) OnJoinSessionComplete() *delegate.Multicast[JoinCompletion]    { return e.join }
func (e *Events) OnUpdateSessionComplete() *delegate.Multicast[Completion]      { return e.update }
func (e *Events) OnDestroySessionComplete() *delegate.Multicast[Completion]     { return e.destroy }
