package session

import (
	"log"

	"github.com/palemoky/netsession/internal/apperrors"
)

// FindGames 搜索会话，结果写入搜索缓存。
// 上一次未完成的搜索被新的搜索取代，它迟到的结果会被丢弃。
func (c *Controller) FindGames(isLAN bool) error {
	p := c.provider
	if p == nil {
		c.search.Fail()
		c.fail(OpFind, apperrors.ErrProviderUnavailable)
		return apperrors.ErrProviderUnavailable
	}
	id := p.Identity(c.opts.LocalUser)
	if !id.Valid() {
		c.search.Fail()
		return apperrors.ErrIdentityInvalid
	}

	if c.InFlight(OpFind) {
		log.Printf("🔎 superseding in-flight search (generation %d)", c.search.Generation())
		c.clear(OpFind)
	}

	search := c.search.BeginSearch(isLAN)
	register(c, OpFind, p.OnFindSessionsComplete(), c.onFindSessionsComplete)
	if err := p.FindSessions(id, search); err != nil {
		c.clear(OpFind)
		c.search.Fail()
		return apperrors.Wrap(apperrors.ErrOperationFailed, "find sessions: %w", err)
	}
	return nil
}

func (c *Controller) onFindSessionsComplete(res SearchCompletion) {
	// 过期的完成不属于当前注册，保留注册等待当前搜索
	if !c.search.IsCurrent(res.Search) {
		c.search.Complete(res)
		return
	}

	c.clear(OpFind)
	c.search.Complete(res)

	if !res.OK {
		c.fail(OpFind, apperrors.Wrap(apperrors.ErrOperationFailed, "find sessions"))
		return
	}
	log.Printf("🔎 found %d sessions", c.search.Len())
	c.succeed(OpFind)
}
