package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawResult(name string, maxPlayers, open, ping int) *RawResult {
	d := &Descriptor{
		NumPublicConnections: maxPlayers,
		Settings:             NewSettings(),
	}
	if name != "" {
		d.Settings.Set(SettingServerName, name)
	}
	return &RawResult{
		SessionID:                name,
		Session:                  d,
		NumOpenPublicConnections: open,
		PingInMs:                 ping,
		PingKnown:                ping >= 0,
	}
}

func TestNewSearchResult_Defaults(t *testing.T) {
	t.Parallel()

	r := NewSearchResult(&RawResult{})

	assert.Equal(t, NoServerInfo, r.ServerName)
	assert.Equal(t, NoMapInfo, r.MapName)
	assert.False(t, r.InProgress)
	assert.Equal(t, UnknownPing, r.PingInMs)
	assert.Equal(t, 0, r.CurrentPlayers)
	assert.Equal(t, 0, r.MaxPlayers)
	assert.NotNil(t, r.Raw())
}

func TestEmptySearchResult_HasNoHandle(t *testing.T) {
	t.Parallel()

	r := EmptySearchResult()
	assert.Nil(t, r.Raw())
	assert.Equal(t, NoServerInfo, r.ServerName)
	assert.Equal(t, UnknownPing, r.PingInMs)
}

func TestNewSearchResult_DerivedFields(t *testing.T) {
	t.Parallel()

	raw := rawResult("Bob", 8, 5, 100)
	raw.Session.Settings.Set(SettingMapName, "Map_Arena")
	raw.Session.Settings.Set(SettingInProgress, "true")

	r := NewSearchResult(raw)

	assert.Equal(t, "Bob", r.ServerName)
	assert.Equal(t, "Map_Arena", r.MapName)
	assert.True(t, r.InProgress)
	assert.Equal(t, 100, r.PingInMs)
	assert.Equal(t, 8, r.MaxPlayers)
	assert.Equal(t, 3, r.CurrentPlayers)
	assert.Same(t, raw, r.Raw())
}

func TestNewSearchResult_ComputedOnce(t *testing.T) {
	t.Parallel()

	raw := rawResult("Bob", 4, 4, 20)
	r := NewSearchResult(raw)

	raw.Session.Settings.Set(SettingServerName, "Renamed")
	assert.Equal(t, "Bob", r.ServerName)
}

func TestSearchCache_BeginSearchQuery(t *testing.T) {
	t.Parallel()

	c := NewSearchCache()
	s := c.BeginSearch(true)

	assert.True(t, s.IsLAN)
	assert.Equal(t, unboundedSearchResults, s.MaxSearchResults)
	assert.Equal(t, 50, s.PingBucketSize)
	assert.Equal(t, QuerySetting{Value: "true", Op: OpEquals}, s.QuerySettings[SearchPresence])
	assert.True(t, c.Searching())
	assert.False(t, c.Finished())
}

func TestSearchCache_SuccessKeepsDiscoveryOrder(t *testing.T) {
	t.Parallel()

	c := NewSearchCache()
	s := c.BeginSearch(false)
	s.Results = []*RawResult{rawResult("a", 2, 1, 10), rawResult("b", 2, 2, 20), rawResult("c", 2, 0, 30)}

	require.True(t, c.Complete(SearchCompletion{Search: s, OK: true}))

	results := c.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ServerName)
	assert.Equal(t, "b", results[1].ServerName)
	assert.Equal(t, "c", results[2].ServerName)
	assert.False(t, c.Searching())
	assert.True(t, c.Finished())
}

func TestSearchCache_FailureYieldsEmptyButFinished(t *testing.T) {
	t.Parallel()

	c := NewSearchCache()
	s := c.BeginSearch(false)
	s.Results = []*RawResult{rawResult("a", 2, 1, 10)}

	require.True(t, c.Complete(SearchCompletion{Search: s, OK: false}))

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Searching())
	assert.True(t, c.Finished())
}

func TestSearchCache_StaleCompletionDropped(t *testing.T) {
	t.Parallel()

	c := NewSearchCache()
	first := c.BeginSearch(false)
	second := c.BeginSearch(false)
	assert.Greater(t, second.Generation(), first.Generation())

	first.Results = []*RawResult{rawResult("stale", 2, 1, 10)}
	assert.False(t, c.Complete(SearchCompletion{Search: first, OK: true}))
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Searching())

	second.Results = []*RawResult{rawResult("fresh", 2, 1, 10)}
	assert.True(t, c.Complete(SearchCompletion{Search: second, OK: true}))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "fresh", c.Results()[0].ServerName)
}

func TestSearchCache_NewSearchClearsResults(t *testing.T) {
	t.Parallel()

	c := NewSearchCache()
	s := c.BeginSearch(false)
	s.Results = []*RawResult{rawResult("a", 2, 1, 10)}
	c.Complete(SearchCompletion{Search: s, OK: true})
	require.Equal(t, 1, c.Len())

	c.BeginSearch(false)
	assert.Equal(t, 0, c.Len())
}

func TestSearchCache_Fail(t *testing.T) {
	t.Parallel()

	c := NewSearchCache()
	s := c.BeginSearch(false)
	c.Fail()

	assert.False(t, c.Searching())
	assert.True(t, c.Finished())
	assert.False(t, c.IsCurrent(s))
}
