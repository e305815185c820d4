package session

import (
	"log"

	"github.com/palemoky/netsession/internal/delegate"
	"github.com/palemoky/netsession/internal/flow"
)

// Operation 会话操作种类
type Operation string

const (
	OpCreate  Operation = "create"
	OpStart   Operation = "start"
	OpFind    Operation = "find"
	OpJoin    Operation = "join"
	OpUpdate  Operation = "update"
	OpDestroy Operation = "destroy"
)

// 默认值
const (
	DefaultSessionName = "Game"
	DefaultMap         = "Map_SandBox"
	DefaultMainMenuMap = "Map_MainMenu"
)

// StateChanger 会话结果驱动的状态机
type StateChanger interface {
	ChangeState(next flow.GameState) bool
	Current() flow.GameState
}

// TravelHost 地图切换宿主
type TravelHost interface {
	// OpenDestination 打开地图，listen 为 true 时作为监听服务器
	OpenDestination(name string, listen bool)
	// ClientTravel 客户端连接到 url
	ClientTravel(url string)
}

// Observer 接收在完成回调中产生的结果（调用方拿不到返回值的那部分）
type Observer interface {
	OperationSucceeded(op Operation)
	OperationFailed(op Operation, err error)
}

type nopObserver struct{}

func (nopObserver) OperationSucceeded(Operation)     {}
func (nopObserver) OperationFailed(Operation, error) {}

// Options 控制器配置
type Options struct {
	SessionName string
	DefaultMap  string
	MainMenuMap string
	LocalUser   int
}

func (o *Options) applyDefaults() {
	if o.SessionName == "" {
		o.SessionName = DefaultSessionName
	}
	if o.DefaultMap == "" {
		o.DefaultMap = DefaultMap
	}
	if o.MainMenuMap == "" {
		o.MainMenuMap = DefaultMainMenuMap
	}
}

// Controller 会话控制器：编排五类异步会话操作，并驱动状态机。
// 所有方法和完成回调都应在同一逻辑线程上调用。
type Controller struct {
	provider Provider
	states   StateChanger
	travel   TravelHost
	observer Observer
	opts     Options

	descriptor *Descriptor
	isHost     bool
	joining    *RawResult
	search     *SearchCache

	// 每类操作最多一个未完成的注册
	pending map[Operation]func() bool
}

// NewController 创建控制器；provider 可以为 nil（此时所有操作失败）
func NewController(provider Provider, states StateChanger, travel TravelHost, opts Options) *Controller {
	opts.applyDefaults()
	return &Controller{
		provider: provider,
		states:   states,
		travel:   travel,
		observer: nopObserver{},
		opts:     opts,
		search:   NewSearchCache(),
		pending:  make(map[Operation]func() bool),
	}
}

// SetProvider 替换会话服务
func (c *Controller) SetProvider(p Provider) {
	c.provider = p
}

// SetObserver 设置结果观察者
func (c *Controller) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
}

// Options 生效的配置
func (c *Controller) Options() Options {
	return c.opts
}

// Search 搜索缓存（只读使用）
func (c *Controller) Search() *SearchCache {
	return c.search
}

// Descriptor 活动会话配置的副本，没有会话时为 nil
func (c *Controller) Descriptor() *Descriptor {
	return c.descriptor.Clone()
}

// HasSession 是否有活动会话
func (c *Controller) HasSession() bool {
	return c.descriptor != nil
}

// IsHost 活动会话是否由本地创建
func (c *Controller) IsHost() bool {
	return c.descriptor != nil && c.isHost
}

// InFlight 某类操作是否在等待完成
func (c *Controller) InFlight(op Operation) bool {
	_, ok := c.pending[op]
	return ok
}

// register 为一次操作注册一次性完成回调
func register[T any](c *Controller, op Operation, ev *delegate.Multicast[T], fn func(T)) {
	h := ev.Add(fn)
	c.pending[op] = func() bool { return ev.Remove(h) }
}

// clear 移除操作的完成回调，由完成路径自己调用
func (c *Controller) clear(op Operation) {
	remove, ok := c.pending[op]
	if !ok {
		log.Printf("[WARN] %s completion without a registered handler", op)
		return
	}
	delete(c.pending, op)
	remove()
}

func (c *Controller) succeed(op Operation) {
	log.Printf("✅ session %s succeeded", op)
	c.observer.OperationSucceeded(op)
}

func (c *Controller) fail(op Operation, err error) {
	log.Printf("❌ session %s failed: %v", op, err)
	c.observer.OperationFailed(op, err)
}

// releaseSession 释放会话配置
func (c *Controller) releaseSession() {
	c.descriptor = nil
	c.isHost = false
	c.joining = nil
}
