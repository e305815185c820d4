package session

import (
	"github.com/palemoky/netsession/internal/apperrors"
)

// SessionSetting 读取活动会话的设置
func (c *Controller) SessionSetting(key string) (string, error) {
	if c.provider == nil {
		return "", apperrors.ErrProviderUnavailable
	}
	if c.descriptor == nil {
		return "", apperrors.ErrSessionNotFound
	}
	v, ok := c.descriptor.Settings.Get(key)
	if !ok {
		return "", apperrors.Wrap(apperrors.ErrSettingKeyMissing, "key %q", key)
	}
	return v, nil
}

// SetOrUpdateSessionSetting 新增或覆盖一个设置，并以完整更新推送给服务端
func (c *Controller) SetOrUpdateSessionSetting(s Setting) error {
	p := c.provider
	if p == nil {
		return apperrors.ErrProviderUnavailable
	}
	if c.descriptor == nil {
		return apperrors.ErrSessionNotFound
	}
	if c.InFlight(OpUpdate) {
		return apperrors.Wrap(apperrors.ErrOperationInFlight, "update")
	}

	c.descriptor.Settings.Set(s.Key, s.Value)

	register(c, OpUpdate, p.OnUpdateSessionComplete(), c.onUpdateSessionComplete)
	if err := p.UpdateSession(c.opts.SessionName, c.descriptor, true); err != nil {
		c.clear(OpUpdate)
		return apperrors.Wrap(apperrors.ErrOperationFailed, "update session: %w", err)
	}
	return nil
}

func (c *Controller) onUpdateSessionComplete(res Completion) {
	c.clear(OpUpdate)
	if !res.OK {
		c.fail(OpUpdate, apperrors.Wrap(apperrors.ErrOperationFailed, "update session %q", res.SessionName))
		return
	}
	c.succeed(OpUpdate)
}
