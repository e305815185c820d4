package session

// Identity 发起会话操作的本地用户。由调用方持有，核心只读。
type Identity struct {
	UserID      string
	DisplayName string
}

// Valid 身份是否可用于会话操作
func (id *Identity) Valid() bool {
	return id != nil && id.UserID != ""
}
