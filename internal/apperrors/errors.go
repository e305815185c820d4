package apperrors

import (
	"errors"
	"fmt"

	"github.com/palemoky/netsession/internal/protocol"
)

// SessionError 会话错误（控制器和大厅共享）
type SessionError struct {
	Code    int
	Message string
	Err     error // 底层原因，可为空
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使 errors.Is(Wrap(ErrX, ...), ErrX) 成立
func (e *SessionError) Is(target error) bool {
	var t *SessionError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// 预定义错误
var (
	ErrProviderUnavailable = newError(protocol.ErrCodeProviderUnavailable)
	ErrIdentityInvalid     = newError(protocol.ErrCodeIdentityInvalid)
	ErrSessionNotFound     = newError(protocol.ErrCodeSessionNotFound)
	ErrSettingKeyMissing   = newError(protocol.ErrCodeSettingKeyMissing)
	ErrOperationInFlight   = newError(protocol.ErrCodeOperationInFlight)
	ErrOperationFailed     = newError(protocol.ErrCodeOperationFailed)
	ErrInvalidArgument     = newError(protocol.ErrCodeInvalidArgument)
	ErrSessionFull         = newError(protocol.ErrCodeSessionFull)
	ErrNotOwner            = newError(protocol.ErrCodeNotOwner)
	ErrStorage             = newError(protocol.ErrCodeStorage)
	ErrAlreadyInSession    = newError(protocol.ErrCodeAlreadyIn)
)

func newError(code int) *SessionError {
	return &SessionError{Code: code, Message: protocol.ErrorMessages[code]}
}

// Wrap 以 base 的错误码包装一个带上下文的错误
func Wrap(base *SessionError, format string, args ...any) *SessionError {
	return &SessionError{
		Code:    base.Code,
		Message: base.Message,
		Err:     fmt.Errorf(format, args...),
	}
}

// Code 返回错误码，非 SessionError 返回 ErrCodeUnknown
func Code(err error) int {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Code
	}
	return protocol.ErrCodeUnknown
}
