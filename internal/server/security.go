package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OriginChecker WebSocket 来源验证器
type OriginChecker struct {
	allowed  map[string]struct{}
	allowAll bool
}

// NewOriginChecker 创建来源验证器；列表为空或包含 "*" 时放行所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]struct{}, len(origins))}
	if len(origins) == 0 {
		oc.allowAll = true
		return oc
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowed[strings.ToLower(origin)] = struct{}{}
	}
	return oc
}

// Check 检查请求来源
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// 终端客户端不带 Origin 头
		return true
	}
	_, ok := oc.allowed[strings.ToLower(origin)]
	return ok
}

// GetClientIP 获取客户端真实 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// MessageRateLimiter 已连接客户端的消息速率限制器（固定一秒窗口）
type MessageRateLimiter struct {
	mu     sync.Mutex
	limits map[string]*messageWindow

	maxPerSecond int
	warnAt       int
	now          func() time.Time
}

type messageWindow struct {
	start    time.Time
	count    int
	warnings int
}

// NewMessageRateLimiter 创建消息速率限制器，maxPerSecond <= 0 表示不限制
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		limits:       make(map[string]*messageWindow),
		maxPerSecond: maxPerSecond,
		warnAt:       maxPerSecond * 4 / 5,
		now:          time.Now,
	}
}

// AllowMessage 记录一条消息并返回是否放行、是否接近上限
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed bool, warning bool) {
	if ml.maxPerSecond <= 0 {
		return true, false
	}

	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	w, ok := ml.limits[clientID]
	if !ok {
		w = &messageWindow{start: now}
		ml.limits[clientID] = w
	}
	if now.Sub(w.start) >= time.Second {
		w.start = now
		w.count = 0
	}
	w.count++

	switch {
	case w.count > ml.maxPerSecond:
		w.warnings++
		return false, true
	case ml.warnAt > 0 && w.count > ml.warnAt:
		return true, true
	default:
		return true, false
	}
}

// GetWarningCount 获取客户端被拒绝的次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if w, ok := ml.limits[clientID]; ok {
		return w.warnings
	}
	return 0
}

// RemoveClient 移除客户端记录
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, clientID)
}
