//go:build !production

package testutil

import (
	"maps"
	"sync"

	"github.com/palemoky/netsession/internal/protocol"
)

// SimpleClient 简单的内存客户端，记录收到的消息（不使用 testify）
type SimpleClient struct {
	ID   string
	Name string
	IP   string

	mu       sync.Mutex
	messages []*protocol.Message
	sessions map[string]string
	closed   bool
}

// NewSimpleClient 创建客户端
func NewSimpleClient(id string) *SimpleClient {
	return &SimpleClient{ID: id, Name: id, IP: "127.0.0.1", sessions: make(map[string]string)}
}

func (c *SimpleClient) GetID() string   { return c.ID }
func (c *SimpleClient) GetName() string { return c.Name }
func (c *SimpleClient) GetIP() string   { return c.IP }

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *SimpleClient) SetSession(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[name] = id
}

func (c *SimpleClient) GetSession(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.sessions[name]
	return id, ok
}

func (c *SimpleClient) ClearSession(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, name)
}

func (c *SimpleClient) Sessions() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.sessions)
}

// Messages 收到的消息副本
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// Last 最后一条消息，没有时返回 nil
func (c *SimpleClient) Last() *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// Closed 是否被关闭
func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
