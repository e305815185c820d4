package session

// Setting 会话自定义设置（键区分大小写，在一个会话内唯一）
type Setting struct {
	Key   string
	Value string
}

// Settings 有序的会话设置表：已有键原地替换，新键追加到末尾
type Settings struct {
	entries []Setting
	index   map[string]int
}

// NewSettings 创建设置表，重复的键以后出现的值为准
func NewSettings(entries ...Setting) *Settings {
	s := &Settings{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		s.Set(e.Key, e.Value)
	}
	return s
}

// Get 获取设置值
func (s *Settings) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].Value, true
}

// Set 设置或更新一个键，返回是否为新增
func (s *Settings) Set(key, value string) (appended bool) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[key]; ok {
		s.entries[i].Value = value
		return false
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, Setting{Key: key, Value: value})
	return true
}

// Len 设置数量
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries 按插入顺序返回设置副本
func (s *Settings) Entries() []Setting {
	if s == nil {
		return nil
	}
	out := make([]Setting, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clone 深拷贝
func (s *Settings) Clone() *Settings {
	if s == nil {
		return NewSettings()
	}
	return NewSettings(s.entries...)
}
