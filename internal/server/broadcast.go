package server

import "github.com/palemoky/netsession/internal/protocol"

// GetOnlineCount 获取在线人数
func (s *Server) GetOnlineCount() int {
	return s.clients.Count()
}

// Broadcast 广播消息给所有客户端
func (s *Server) Broadcast(msg *protocol.Message) {
	s.clients.IterCb(func(_ string, client *Client) {
		client.SendMessage(msg)
	})
}
