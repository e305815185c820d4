package protocol

// 错误码
const (
	ErrCodeUnknown     = 1000
	ErrCodeInvalidMsg  = 1001
	ErrCodeMaintenance = 1002 // 服务器维护中
	ErrCodeRateLimit   = 1003 // 消息过于频繁

	// 会话控制器
	ErrCodeProviderUnavailable = 2001 // 会话服务不可用
	ErrCodeIdentityInvalid     = 2002 // 本地用户身份无效
	ErrCodeSessionNotFound     = 2003 // 没有活动会话 / 会话不存在
	ErrCodeSettingKeyMissing   = 2004 // 会话设置中没有该键
	ErrCodeOperationInFlight   = 2005 // 同类操作仍在进行
	ErrCodeOperationFailed     = 2006 // 服务端报告操作失败
	ErrCodeInvalidArgument     = 2007 // 调用参数无效

	// 大厅
	ErrCodeSessionFull = 3001 // 会话已满
	ErrCodeNotOwner    = 3002 // 不是会话创建者
	ErrCodeStorage     = 3003 // 存储错误
	ErrCodeAlreadyIn   = 3004 // 已在会话中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:             "未知错误",
	ErrCodeInvalidMsg:          "无效的消息格式",
	ErrCodeMaintenance:         "服务器维护中，暂停创建和加入会话",
	ErrCodeRateLimit:           "消息发送过于频繁",
	ErrCodeProviderUnavailable: "会话服务不可用",
	ErrCodeIdentityInvalid:     "本地用户身份无效",
	ErrCodeSessionNotFound:     "会话不存在",
	ErrCodeSettingKeyMissing:   "会话设置不存在",
	ErrCodeOperationInFlight:   "操作正在进行中",
	ErrCodeOperationFailed:     "操作失败",
	ErrCodeInvalidArgument:     "参数无效",
	ErrCodeSessionFull:         "会话已满",
	ErrCodeNotOwner:            "只有会话创建者可以修改会话",
	ErrCodeStorage:             "存储错误",
	ErrCodeAlreadyIn:           "已经在该会话中",
}
