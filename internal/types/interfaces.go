package types

import (
	"github.com/palemoky/netsession/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	GetClientByID(id string) ClientInterface
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	GetIP() string
	SendMessage(msg *protocol.Message)
	Close()

	// 连接持有的会话：会话名 -> 会话 ID
	SetSession(name, id string)
	GetSession(name string) (string, bool)
	ClearSession(name string)
	Sessions() map[string]string
}
