//go:build !production

package testutil

import (
	"github.com/palemoky/netsession/internal/session"
)

// FakeProvider 内存中的 session.Provider：记录发起的请求，由测试手动触发完成通知
type FakeProvider struct {
	session.Events

	Ident *session.Identity

	// BeginErrs 按操作注入发起失败
	BeginErrs map[session.Operation]error

	Calls          []session.Operation
	SessionName    string
	Created        *session.Descriptor
	Updated        *session.Descriptor
	UpdateRefresh  bool
	Searches       []*session.Search
	JoinedRaw      *session.RawResult
	ConnectStrings map[string]string
}

// NewFakeProvider 创建已登录 userID 的 FakeProvider；userID 为空表示未登录
func NewFakeProvider(userID string) *FakeProvider {
	p := &FakeProvider{
		Events:         session.NewEvents(),
		BeginErrs:      make(map[session.Operation]error),
		ConnectStrings: make(map[string]string),
	}
	if userID != "" {
		p.Ident = &session.Identity{UserID: userID, DisplayName: userID}
	}
	return p
}

func (p *FakeProvider) begin(op session.Operation) error {
	p.Calls = append(p.Calls, op)
	return p.BeginErrs[op]
}

func (p *FakeProvider) Identity(int) *session.Identity {
	return p.Ident
}

func (p *FakeProvider) CreateSession(_ *session.Identity, name string, d *session.Descriptor) error {
	p.SessionName = name
	p.Created = d.Clone()
	return p.begin(session.OpCreate)
}

func (p *FakeProvider) StartSession(name string) error {
	p.SessionName = name
	return p.begin(session.OpStart)
}

func (p *FakeProvider) FindSessions(_ *session.Identity, search *session.Search) error {
	p.Searches = append(p.Searches, search)
	return p.begin(session.OpFind)
}

func (p *FakeProvider) JoinSession(_ *session.Identity, name string, raw *session.RawResult) error {
	p.SessionName = name
	p.JoinedRaw = raw
	return p.begin(session.OpJoin)
}

func (p *FakeProvider) UpdateSession(name string, d *session.Descriptor, refresh bool) error {
	p.SessionName = name
	p.Updated = d.Clone()
	p.UpdateRefresh = refresh
	return p.begin(session.OpUpdate)
}

func (p *FakeProvider) DestroySession(name string) error {
	p.SessionName = name
	return p.begin(session.OpDestroy)
}

func (p *FakeProvider) ResolveConnectString(name string) (string, bool) {
	url, ok := p.ConnectStrings[name]
	return url, ok
}

// --- 完成通知 ---

func (p *FakeProvider) CompleteCreate(ok bool) {
	p.OnCreateSessionComplete().Broadcast(session.Completion{SessionName: p.SessionName, OK: ok})
}

func (p *FakeProvider) CompleteStart(ok bool) {
	p.OnStartSessionComplete().Broadcast(session.Completion{SessionName: p.SessionName, OK: ok})
}

// CompleteFind 把 raws 填入 search 并广播完成
func (p *FakeProvider) CompleteFind(search *session.Search, ok bool, raws ...*session.RawResult) {
	if ok {
		search.Results = append(search.Results, raws...)
	}
	p.OnFindSessionsComplete().Broadcast(session.SearchCompletion{Search: search, OK: ok})
}

// LastSearch 最近一次搜索
func (p *FakeProvider) LastSearch() *session.Search {
	if len(p.Searches) == 0 {
		return nil
	}
	return p.Searches[len(p.Searches)-1]
}

func (p *FakeProvider) CompleteJoin(result session.JoinResult) {
	p.OnJoinSessionComplete().Broadcast(session.JoinCompletion{SessionName: p.SessionName, Result: result})
}

func (p *FakeProvider) CompleteUpdate(ok bool) {
	p.OnUpdateSessionComplete().Broadcast(session.Completion{SessionName: p.SessionName, OK: ok})
}

func (p *FakeProvider) CompleteDestroy(ok bool) {
	p.OnDestroySessionComplete().Broadcast(session.Completion{SessionName: p.SessionName, OK: ok})
}

// Registered 所有事件上仍注册的回调总数
func (p *FakeProvider) Registered() int {
	return p.OnCreateSessionComplete().Len() +
		p.OnStartSessionComplete().Len() +
		p.OnFindSessionsComplete().Len() +
		p.OnJoinSessionComplete().Len() +
		p.OnUpdateSessionComplete().Len() +
		p.OnDestroySessionComplete().Len()
}
