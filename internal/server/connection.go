package server

import (
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/types"
)

// 玩家昵称最大长度（字符）
const maxNameLength = 24

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		log.Printf("🔧 维护模式，拒绝新连接: %s", clientIP)
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 来源验证
	if !s.originChecker.Check(r) {
		log.Printf("🚫 来源验证失败: %s (IP: %s)", r.Header.Get("Origin"), clientIP)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	client := NewClient(s, conn, sanitizeName(r.URL.Query().Get("name")))
	client.IP = clientIP
	s.registerClient(client)

	client.SendMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:   client.ID,
		PlayerName: client.Name,
	}))

	log.Printf("✅ 玩家 %s (%s) 已连接", client.Name, client.ID)

	go client.ReadPump()
	go client.WritePump()
}

// sanitizeName 裁剪客户端自报的昵称
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clients.Set(client.ID, client)
	s.metrics.Connections.Inc()
}

// unregisterClient 注销客户端并异步释放其持有的会话
func (s *Server) unregisterClient(client *Client) {
	if _, ok := s.clients.Pop(client.ID); !ok {
		return
	}
	s.metrics.Connections.Dec()
	s.messageLimiter.RemoveClient(client.ID)
	client.Close()
	log.Printf("❌ 玩家 %s (%s) 已断开", client.Name, client.ID)

	cleanup := func() { s.handler.OnDisconnect(client) }
	if err := s.cleanup.Submit(cleanup); err != nil {
		// 协程池已关闭或已满，同步清理
		log.Printf("⚠️ 提交断线清理任务失败: %v", err)
		cleanup()
	}
}

// GetClientByID 按 ID 查找在线客户端
func (s *Server) GetClientByID(id string) types.ClientInterface {
	if client, ok := s.clients.Get(id); ok {
		return client
	}
	return nil
}
