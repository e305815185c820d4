package session

import (
	"log"

	"github.com/palemoky/netsession/internal/apperrors"
	"github.com/palemoky/netsession/internal/flow"
)

// LeaveGame 销毁（主机）或离开（客户端）当前会话
func (c *Controller) LeaveGame() error {
	p := c.provider
	if p == nil {
		return apperrors.ErrProviderUnavailable
	}
	if c.InFlight(OpDestroy) {
		return apperrors.Wrap(apperrors.ErrOperationInFlight, "leave")
	}

	register(c, OpDestroy, p.OnDestroySessionComplete(), c.onDestroySessionComplete)
	if err := p.DestroySession(c.opts.SessionName); err != nil {
		c.clear(OpDestroy)
		return apperrors.Wrap(apperrors.ErrOperationFailed, "destroy session: %w", err)
	}
	return nil
}

func (c *Controller) onDestroySessionComplete(res Completion) {
	c.clear(OpDestroy)
	if !res.OK {
		c.fail(OpDestroy, apperrors.Wrap(apperrors.ErrOperationFailed, "destroy session %q", res.SessionName))
		return
	}

	c.releaseSession()
	if c.travel != nil {
		c.travel.OpenDestination(c.opts.MainMenuMap, false)
	}
	c.states.ChangeState(flow.Travelling)
	c.succeed(OpDestroy)
}

// HandleNetworkError 网络错误时离开会话
func (c *Controller) HandleNetworkError(err error) {
	log.Printf("📴 network error: %v", err)
	if leaveErr := c.LeaveGame(); leaveErr != nil {
		log.Printf("leave after network error failed: %v", leaveErr)
	}
}

// Abandon 大厅连接已断开时只在本地释放会话，不再等待服务端回复
func (c *Controller) Abandon() {
	for _, op := range []Operation{OpCreate, OpStart, OpJoin, OpUpdate, OpDestroy} {
		if c.InFlight(op) {
			c.clear(op)
		}
	}
	if c.descriptor != nil {
		log.Printf("📴 abandoning session %q", c.opts.SessionName)
	}
	c.releaseSession()
}
