// Package delegate provides multicast completion events whose registrations must
// be removed explicitly by the party that added them.
package delegate

import (
	"log"
	"sync"
)

// Handle 注册回调后返回的令牌，用于之后移除该回调
type Handle struct {
	id uint64
}

// IsValid 令牌是否来自一次有效的注册
func (h Handle) IsValid() bool {
	return h.id != 0
}

type entry[T any] struct {
	id uint64
	fn func(T)
}

// Multicast 多播事件。注册的回调不会在触发后自动清除，
// 调用方必须对每个 Add 恰好调用一次 Remove。
type Multicast[T any] struct {
	name     string
	next     uint64
	handlers []entry[T]
	mu       sync.Mutex
}

// New 创建带名称的多播事件（名称仅用于日志）
func New[T any](name string) *Multicast[T] {
	return &Multicast[T]{name: name}
}

// Add 注册回调
func (m *Multicast[T]) Add(fn func(T)) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	m.handlers = append(m.handlers, entry[T]{id: m.next, fn: fn})
	return Handle{id: m.next}
}

// Remove 移除回调。重复移除或移除未知令牌返回 false 并记录日志。
func (m *Multicast[T]) Remove(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.handlers {
		if e.id == h.id {
			m.handlers = append(m.handlers[:i], m.handlers[i+1:]...)
			return true
		}
	}

	log.Printf("[WARN] delegate %s: remove of unregistered handle %d", m.name, h.id)
	return false
}

// Broadcast 依次调用当前注册的所有回调。
// 回调列表在调用前复制，回调内部可以安全地 Add/Remove。
func (m *Multicast[T]) Broadcast(v T) {
	m.mu.Lock()
	handlers := make([]entry[T], len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	for _, e := range handlers {
		e.fn(v)
	}
}

// Len 当前注册的回调数量
func (m *Multicast[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

// Name 事件名称
func (m *Multicast[T]) Name() string {
	return m.name
}
