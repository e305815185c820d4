package session

import "log"

const (
	// 搜索结果缺失时的默认展示值
	NoServerInfo = "No Server Info"
	NoMapInfo    = "No Map Info"
	UnknownPing  = -1

	// 搜索参数
	unboundedSearchResults = 100000000
	defaultPingBucketSize  = 50
)

// ComparisonOp 搜索过滤的比较方式
type ComparisonOp int

const (
	OpEquals ComparisonOp = iota
	OpNotEquals
)

// QuerySetting 一个搜索过滤条件
type QuerySetting struct {
	Value string
	Op    ComparisonOp
}

// RawResult 服务端返回的原始搜索结果，按引用持有
type RawResult struct {
	SessionID                string
	OwnerID                  string
	OwnerName                string
	Session                  *Descriptor
	NumOpenPublicConnections int
	PingInMs                 int
	PingKnown                bool
}

// Search 一次搜索的查询条件，服务端在完成前把结果填入 Results
type Search struct {
	IsLAN            bool
	MaxSearchResults int
	PingBucketSize   int
	QuerySettings    map[string]QuerySetting
	Results          []*RawResult

	generation uint64
}

// Generation 搜索代号，单调递增
func (s *Search) Generation() uint64 {
	return s.generation
}

// SearchResult 展示用的搜索结果，派生字段在发现时计算一次
type SearchResult struct {
	raw *RawResult

	ServerName     string
	MapName        string
	InProgress     bool
	PingInMs       int
	CurrentPlayers int
	MaxPlayers     int
}

// EmptySearchResult 全部为默认值的结果
func EmptySearchResult() SearchResult {
	return SearchResult{
		ServerName: NoServerInfo,
		MapName:    NoMapInfo,
		PingInMs:   UnknownPing,
	}
}

// NewSearchResult 从原始结果派生展示字段，缺失的键用默认值替代
func NewSearchResult(raw *RawResult) SearchResult {
	r := EmptySearchResult()
	if raw == nil {
		return r
	}
	r.raw = raw

	var settings *Settings
	if raw.Session != nil {
		settings = raw.Session.Settings
		r.MaxPlayers = raw.Session.NumPublicConnections
		r.CurrentPlayers = max(r.MaxPlayers-raw.NumOpenPublicConnections, 0)
	}

	if v, ok := settings.Get(SettingServerName); ok {
		r.ServerName = v
	}
	if v, ok := settings.Get(SettingMapName); ok {
		r.MapName = v
	}
	if v, ok := settings.Get(SettingInProgress); ok {
		r.InProgress = v == "true"
	}
	if raw.PingKnown {
		r.PingInMs = raw.PingInMs
	}
	return r
}

// Raw 原始结果句柄，空结果返回 nil
func (r SearchResult) Raw() *RawResult {
	return r.raw
}

// SearchCache 保存最近一次完成的搜索结果
type SearchCache struct {
	results    []SearchResult
	searching  bool
	finished   bool
	generation uint64
	current    *Search
}

// NewSearchCache 创建搜索缓存
func NewSearchCache() *SearchCache {
	return &SearchCache{}
}

// BeginSearch 清空结果并生成新的查询，之前未完成的搜索随之作废
func (c *SearchCache) BeginSearch(isLAN bool) *Search {
	c.generation++
	c.results = nil
	c.searching = true
	c.finished = false
	c.current = &Search{
		IsLAN:            isLAN,
		MaxSearchResults: unboundedSearchResults,
		PingBucketSize:   defaultPingBucketSize,
		QuerySettings: map[string]QuerySetting{
			SearchPresence: {Value: "true", Op: OpEquals},
		},
		generation: c.generation,
	}
	return c.current
}

// IsCurrent 完成通知是否属于当前搜索
func (c *SearchCache) IsCurrent(s *Search) bool {
	return s != nil && c.current == s && s.generation == c.generation
}

// Complete 应用搜索完成通知；过期的通知被丢弃并返回 false
func (c *SearchCache) Complete(sc SearchCompletion) bool {
	if !c.IsCurrent(sc.Search) {
		var gen uint64
		if sc.Search != nil {
			gen = sc.Search.generation
		}
		log.Printf("[WARN] dropping stale search completion (generation %d, current %d)", gen, c.generation)
		return false
	}

	if sc.OK {
		c.results = make([]SearchResult, 0, len(sc.Search.Results))
		for _, raw := range sc.Search.Results {
			c.results = append(c.results, NewSearchResult(raw))
		}
	}
	c.searching = false
	c.finished = true
	c.current = nil
	return true
}

// Fail 在无法发起搜索时合成一次失败的完成
func (c *SearchCache) Fail() {
	c.generation++
	c.results = nil
	c.current = nil
	c.searching = false
	c.finished = true
}

// Results 结果副本，按发现顺序
func (c *SearchCache) Results() []SearchResult {
	out := make([]SearchResult, len(c.results))
	copy(out, c.results)
	return out
}

// Len 结果数量
func (c *SearchCache) Len() int { return len(c.results) }

// Searching 是否正在搜索
func (c *SearchCache) Searching() bool { return c.searching }

// Finished 最近一次搜索是否已结束
func (c *SearchCache) Finished() bool { return c.finished }

// Generation 当前搜索代号
func (c *SearchCache) Generation() uint64 { return c.generation }
