package session

// 广播设置中约定的键
const (
	SettingMapName    = "MAPNAME"
	SettingServerName = "ServerName"
	SettingInProgress = "InProgress"

	// SearchPresence 搜索时的 presence 过滤键
	SearchPresence = "PRESENCESEARCH"
)

// Descriptor 活动会话的配置。由 Controller 独占：
// 主机成功时创建，只通过更新操作修改，离开成功后释放。
type Descriptor struct {
	IsLAN                           bool
	UsesPresence                    bool
	NumPublicConnections            int
	NumPrivateConnections           int
	ShouldAdvertise                 bool
	AllowInvites                    bool
	AllowJoinInProgress             bool
	AllowJoinViaPresence            bool
	AllowJoinViaPresenceFriendsOnly bool
	MapName                         string
	Settings                        *Settings
}

// newHostDescriptor 主机创建会话时的配置；调用方的设置最后合并，可覆盖默认地图
func newHostDescriptor(isLAN bool, maxPlayers int, mapName string, extra []Setting) *Descriptor {
	d := &Descriptor{
		IsLAN:                isLAN,
		UsesPresence:         true,
		NumPublicConnections: maxPlayers,
		ShouldAdvertise:      true,
		AllowInvites:         true,
		AllowJoinInProgress:  true,
		AllowJoinViaPresence: true,
		MapName:              mapName,
		Settings:             NewSettings(Setting{Key: SettingMapName, Value: mapName}),
	}
	for _, s := range extra {
		d.Settings.Set(s.Key, s.Value)
	}
	return d
}

// AdvertisedMap 广播的地图名，优先取 MAPNAME 设置
func (d *Descriptor) AdvertisedMap() string {
	if v, ok := d.Settings.Get(SettingMapName); ok && v != "" {
		return v
	}
	return d.MapName
}

// Clone 深拷贝
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Settings = d.Settings.Clone()
	return &c
}
