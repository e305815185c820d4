package remote

import (
	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/session"
)

// toWireSettings 会话配置转换为线上格式
func toWireSettings(d *session.Descriptor) protocol.SessionSettingsInfo {
	info := protocol.SessionSettingsInfo{
		IsLAN:                           d.IsLAN,
		UsesPresence:                    d.UsesPresence,
		NumPublicConnections:            d.NumPublicConnections,
		NumPrivateConnections:           d.NumPrivateConnections,
		ShouldAdvertise:                 d.ShouldAdvertise,
		AllowInvites:                    d.AllowInvites,
		AllowJoinInProgress:             d.AllowJoinInProgress,
		AllowJoinViaPresence:            d.AllowJoinViaPresence,
		AllowJoinViaPresenceFriendsOnly: d.AllowJoinViaPresenceFriendsOnly,
		MapName:                         d.MapName,
	}
	if d.Settings != nil {
		for _, s := range d.Settings.Entries() {
			info.Settings = append(info.Settings, protocol.SettingInfo{Key: s.Key, Value: s.Value})
		}
	}
	return info
}

// fromWireSettings 线上格式转换为会话配置
func fromWireSettings(info protocol.SessionSettingsInfo) *session.Descriptor {
	entries := make([]session.Setting, 0, len(info.Settings))
	for _, s := range info.Settings {
		entries = append(entries, session.Setting{Key: s.Key, Value: s.Value})
	}
	return &session.Descriptor{
		IsLAN:                           info.IsLAN,
		UsesPresence:                    info.UsesPresence,
		NumPublicConnections:            info.NumPublicConnections,
		NumPrivateConnections:           info.NumPrivateConnections,
		ShouldAdvertise:                 info.ShouldAdvertise,
		AllowInvites:                    info.AllowInvites,
		AllowJoinInProgress:             info.AllowJoinInProgress,
		AllowJoinViaPresence:            info.AllowJoinViaPresence,
		AllowJoinViaPresenceFriendsOnly: info.AllowJoinViaPresenceFriendsOnly,
		MapName:                         info.MapName,
		Settings:                        session.NewSettings(entries...),
	}
}

// joinResultFromWire 线上加入结果转换为结果码
func joinResultFromWire(result string) session.JoinResult {
	switch result {
	case protocol.JoinResultSuccess:
		return session.JoinSuccess
	case protocol.JoinResultSessionFull:
		return session.JoinSessionIsFull
	case protocol.JoinResultSessionNotFound:
		return session.JoinSessionDoesNotExist
	case protocol.JoinResultAddressUnresolved:
		return session.JoinCouldNotRetrieveAddress
	case protocol.JoinResultAlreadyInSession:
		return session.JoinAlreadyInSession
	default:
		return session.JoinUnknownError
	}
}

// bucketPing 把延迟取整到桶大小
func bucketPing(ms int64, bucket int) int {
	if bucket <= 0 {
		return int(ms)
	}
	b := int64(bucket)
	return int(((ms + b/2) / b) * b)
}
