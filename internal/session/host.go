package session

import (
	"github.com/palemoky/netsession/internal/apperrors"
	"github.com/palemoky/netsession/internal/flow"
)

// HostGame 创建并自动开始一个会话。
// 调用方的设置全部以广播方式合并进会话配置。
func (c *Controller) HostGame(isLAN bool, maxPlayers int, settings []Setting) error {
	p := c.provider
	if p == nil {
		return apperrors.ErrProviderUnavailable
	}
	id := p.Identity(c.opts.LocalUser)
	if !id.Valid() {
		return apperrors.ErrIdentityInvalid
	}
	if maxPlayers <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidArgument, "max players %d", maxPlayers)
	}
	if c.InFlight(OpCreate) || c.InFlight(OpStart) {
		return apperrors.Wrap(apperrors.ErrOperationInFlight, "host")
	}
	// 已有会话时不覆盖，先离开
	if c.descriptor != nil {
		return apperrors.Wrap(apperrors.ErrAlreadyInSession, "host")
	}

	// 等待创建期间显示加载界面
	c.states.ChangeState(flow.LoadingScreen)

	return c.hostSession(p, id, isLAN, maxPlayers, settings)
}

func (c *Controller) hostSession(p Provider, id *Identity, isLAN bool, maxPlayers int, settings []Setting) error {
	c.descriptor = newHostDescriptor(isLAN, maxPlayers, c.opts.DefaultMap, settings)
	c.isHost = true

	register(c, OpCreate, p.OnCreateSessionComplete(), c.onCreateSessionComplete)
	if err := p.CreateSession(id, c.opts.SessionName, c.descriptor); err != nil {
		c.clear(OpCreate)
		c.releaseSession()
		return apperrors.Wrap(apperrors.ErrOperationFailed, "create session: %w", err)
	}
	return nil
}

func (c *Controller) onCreateSessionComplete(res Completion) {
	c.clear(OpCreate)

	if !res.OK {
		c.releaseSession()
		c.fail(OpCreate, apperrors.Wrap(apperrors.ErrOperationFailed, "create session %q", res.SessionName))
		return
	}
	c.succeed(OpCreate)

	// 创建成功后自动开始会话
	p := c.provider
	if p == nil {
		c.releaseSession()
		c.fail(OpStart, apperrors.ErrProviderUnavailable)
		return
	}
	register(c, OpStart, p.OnStartSessionComplete(), c.onStartSessionComplete)
	if err := p.StartSession(res.SessionName); err != nil {
		c.clear(OpStart)
		c.releaseSession()
		c.fail(OpStart, apperrors.Wrap(apperrors.ErrOperationFailed, "start session: %w", err))
	}
}

func (c *Controller) onStartSessionComplete(res Completion) {
	c.clear(OpStart)

	if !res.OK {
		c.releaseSession()
		c.fail(OpStart, apperrors.Wrap(apperrors.ErrOperationFailed, "start session %q", res.SessionName))
		return
	}

	mapName := c.opts.DefaultMap
	if c.descriptor != nil {
		mapName = c.descriptor.AdvertisedMap()
	}
	if c.travel != nil {
		c.travel.OpenDestination(mapName, true)
	}
	c.states.ChangeState(flow.Travelling)
	c.succeed(OpStart)
}
