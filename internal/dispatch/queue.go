// Package dispatch serialises callbacks from network goroutines onto the
// single logical thread that owns the session controller.
package dispatch

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/palemoky/netsession/internal/logger"
)

const (
	defaultHint  = 64
	runBatch     = 64
	pollInterval = 50 * time.Millisecond
)

// Queue 回调队列：任意协程 Post，拥有者线程 Drain 或 Run
type Queue struct {
	q *queue.Queue
}

// NewQueue 创建队列
func NewQueue() *Queue {
	return &Queue{q: queue.New(defaultHint)}
}

// Post 投递回调，队列关闭后返回 false
func (q *Queue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	return q.q.Put(fn) == nil
}

// Drain 在当前线程执行所有已投递的回调，返回执行数量。
// 回调中再次 Post 的任务留到下一次 Drain。
func (q *Queue) Drain() int {
	n := q.q.Len()
	if n == 0 {
		return 0
	}
	items, err := q.q.Get(n)
	if err != nil {
		return 0
	}
	q.invokeAll(items)
	return len(items)
}

// Run 循环执行回调直到 ctx 结束；结束前执行完剩余回调并关闭队列
func (q *Queue) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			q.Drain()
			q.Close()
			return
		}
		items, err := q.q.Poll(runBatch, pollInterval)
		switch {
		case err == nil:
			q.invokeAll(items)
		case errors.Is(err, queue.ErrTimeout):
		default:
			return // 已关闭
		}
	}
}

// Close 停止接收新的回调，未执行的回调被丢弃
func (q *Queue) Close() {
	q.q.Dispose()
}

// Len 待执行的回调数量
func (q *Queue) Len() int {
	return int(q.q.Len())
}

func (q *Queue) invokeAll(items []interface{}) {
	for _, item := range items {
		if fn, ok := item.(func()); ok {
			q.invoke(fn)
		}
	}
}

func (q *Queue) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] dispatch callback panic recovered: %v", r)
		}
	}()
	fn()
}
