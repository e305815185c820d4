package protocol

// --- 共享结构 ---

// SettingInfo 会话自定义设置
type SettingInfo struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SessionSettingsInfo 会话配置（对应 session.Descriptor）
type SessionSettingsInfo struct {
	IsLAN                           bool          `json:"is_lan"`
	UsesPresence                    bool          `json:"uses_presence"`
	NumPublicConnections            int           `json:"num_public_connections"`
	NumPrivateConnections           int           `json:"num_private_connections"`
	ShouldAdvertise                 bool          `json:"should_advertise"`
	AllowInvites                    bool          `json:"allow_invites"`
	AllowJoinInProgress             bool          `json:"allow_join_in_progress"`
	AllowJoinViaPresence            bool          `json:"allow_join_via_presence"`
	AllowJoinViaPresenceFriendsOnly bool          `json:"allow_join_via_presence_friends_only"`
	MapName                         string        `json:"map_name"`
	Settings                        []SettingInfo `json:"settings"`
}

// Get 查找自定义设置
func (s *SessionSettingsInfo) Get(key string) (string, bool) {
	for _, st := range s.Settings {
		if st.Key == key {
			return st.Value, true
		}
	}
	return "", false
}

// SessionListItem 搜索结果中的一个会话
type SessionListItem struct {
	SessionID                string              `json:"session_id"`
	OwnerID                  string              `json:"owner_id"`
	OwnerName                string              `json:"owner_name"`
	Settings                 SessionSettingsInfo `json:"settings"`
	NumOpenPublicConnections int                 `json:"num_open_public_connections"`
}

// 加入结果
const (
	JoinResultSuccess           = "success"
	JoinResultSessionFull       = "session_full"
	JoinResultSessionNotFound   = "session_not_found"
	JoinResultAddressUnresolved = "address_unresolved"
	JoinResultAlreadyInSession  = "already_in_session"
	JoinResultUnknown           = "unknown"
)

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateSessionPayload 创建会话请求
type CreateSessionPayload struct {
	SessionName string              `json:"session_name"`
	HostAddress string              `json:"host_address"`
	Settings    SessionSettingsInfo `json:"settings"`
}

// SessionNamePayload 只携带会话名的请求（开始 / 销毁）
type SessionNamePayload struct {
	SessionName string `json:"session_name"`
}

// FindSessionsPayload 搜索会话请求
type FindSessionsPayload struct {
	IsLAN      bool `json:"is_lan"`
	MaxResults int  `json:"max_results"`
	Presence   bool `json:"presence"`
}

// JoinSessionPayload 加入会话请求
type JoinSessionPayload struct {
	SessionName string `json:"session_name"`
	SessionID   string `json:"session_id"`
}

// UpdateSessionPayload 更新会话请求
type UpdateSessionPayload struct {
	SessionName string              `json:"session_name"`
	Settings    SessionSettingsInfo `json:"settings"`
	Refresh     bool                `json:"refresh"`
}

// --- 大厅响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// SessionResultPayload 会话操作结果（创建 / 开始 / 更新 / 销毁）
type SessionResultPayload struct {
	SessionName string `json:"session_name"`
	SessionID   string `json:"session_id,omitempty"`
	OK          bool   `json:"ok"`
	Code        int    `json:"code,omitempty"`
}

// SessionsFoundPayload 搜索结果
type SessionsFoundPayload struct {
	OK      bool              `json:"ok"`
	Results []SessionListItem `json:"results"`
}

// SessionJoinedPayload 加入结果
type SessionJoinedPayload struct {
	SessionName   string `json:"session_name"`
	Result        string `json:"result"`
	ConnectString string `json:"connect_string,omitempty"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
