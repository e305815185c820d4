package session

import (
	"github.com/palemoky/netsession/internal/apperrors"
	"github.com/palemoky/netsession/internal/flow"
)

// JoinGame 加入搜索结果中的会话
func (c *Controller) JoinGame(result SearchResult) error {
	p := c.provider
	if p == nil {
		return apperrors.ErrProviderUnavailable
	}
	id := p.Identity(c.opts.LocalUser)
	if !id.Valid() {
		return apperrors.ErrIdentityInvalid
	}
	raw := result.Raw()
	if raw == nil {
		return apperrors.Wrap(apperrors.ErrSessionNotFound, "search result has no session handle")
	}
	if c.InFlight(OpJoin) {
		return apperrors.Wrap(apperrors.ErrOperationInFlight, "join")
	}
	if c.descriptor != nil {
		return apperrors.Wrap(apperrors.ErrAlreadyInSession, "join")
	}

	register(c, OpJoin, p.OnJoinSessionComplete(), c.onJoinSessionComplete)
	if err := p.JoinSession(id, c.opts.SessionName, raw); err != nil {
		c.clear(OpJoin)
		return apperrors.Wrap(apperrors.ErrOperationFailed, "join session: %w", err)
	}
	c.joining = raw
	return nil
}

func (c *Controller) onJoinSessionComplete(res JoinCompletion) {
	c.clear(OpJoin)
	joined := c.joining
	c.joining = nil

	if res.Result != JoinSuccess {
		c.fail(OpJoin, apperrors.Wrap(apperrors.ErrOperationFailed, "join session %q: %s", res.SessionName, res.Result))
		return
	}

	p := c.provider
	if p == nil {
		c.fail(OpJoin, apperrors.ErrProviderUnavailable)
		return
	}
	url, ok := p.ResolveConnectString(res.SessionName)
	if !ok {
		c.fail(OpJoin, apperrors.Wrap(apperrors.ErrOperationFailed, "no connect string for %q", res.SessionName))
		return
	}

	// 客户端持有所加入会话设置的只读副本
	if joined != nil && joined.Session != nil {
		c.descriptor = joined.Session.Clone()
		c.isHost = false
	}

	if c.travel != nil {
		c.travel.ClientTravel(url)
	}
	c.states.ChangeState(flow.Travelling)
	c.succeed(OpJoin)
}
