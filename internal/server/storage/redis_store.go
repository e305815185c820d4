package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/netsession/internal/apperrors"
	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/session"
)

const (
	// Redis key 前缀
	sessionKeyPrefix = "lobby:session:"
	ownerKeyPrefix   = "lobby:owner:"
	sessionIndexKey  = "lobby:sessions"

	// 广播会话默认过期时间
	defaultSessionExpiration = 30 * time.Minute

	// 乐观锁冲突时的重试次数
	maxTxRetries = 8
)

// SessionData 广播中的会话（用于 Redis 序列化）
type SessionData struct {
	ID                    string                       `json:"id"`
	Name                  string                       `json:"name"`
	OwnerID               string                       `json:"owner_id"`
	OwnerName             string                       `json:"owner_name"`
	HostAddress           string                       `json:"host_address"`
	Settings              protocol.SessionSettingsInfo `json:"settings"`
	OpenPublicConnections int                          `json:"open_public_connections"`
	Started               bool                         `json:"started"`
	Members               []string                     `json:"members"`
	CreatedAt             int64                        `json:"created_at"`
}

// HasMember 玩家是否已加入
func (d *SessionData) HasMember(playerID string) bool {
	return slices.Contains(d.Members, playerID)
}

// ListItem 转换为搜索结果条目
func (d *SessionData) ListItem() protocol.SessionListItem {
	return protocol.SessionListItem{
		SessionID:                d.ID,
		OwnerID:                  d.OwnerID,
		OwnerName:                d.OwnerName,
		Settings:                 d.Settings,
		NumOpenPublicConnections: d.OpenPublicConnections,
	}
}

// Filter 搜索条件
type Filter struct {
	IsLAN      bool
	Presence   bool
	MaxResults int
}

func (f Filter) match(d *SessionData) bool {
	if !d.Settings.ShouldAdvertise {
		return false
	}
	if d.Settings.IsLAN != f.IsLAN {
		return false
	}
	if f.Presence && !d.Settings.UsesPresence {
		return false
	}
	return true
}

// RedisStore Redis 存储
type RedisStore struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedisStore 创建 Redis 存储；expiration 为 0 时使用默认过期时间
func NewRedisStore(client *redis.Client, expiration time.Duration) *RedisStore {
	if expiration <= 0 {
		expiration = defaultSessionExpiration
	}
	return &RedisStore{client: client, expiration: expiration}
}

// Ping 检查 Redis 连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// --- 会话存储 ---

// SaveSession 保存会话并加入索引
func (rs *RedisStore) SaveSession(ctx context.Context, data *SessionData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化会话数据失败: %w", err)
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKeyPrefix+data.ID, jsonData, rs.expiration)
		pipe.SAdd(ctx, sessionIndexKey, data.ID)
		pipe.SAdd(ctx, ownerKeyPrefix+data.OwnerID, data.ID)
		return nil
	})
	return err
}

// LoadSession 从 Redis 加载会话，不存在时返回 nil
func (rs *RedisStore) LoadSession(ctx context.Context, id string) (*SessionData, error) {
	data, err := rs.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 会话不存在
		}
		return nil, err
	}
	return decodeSession(data)
}

// DeleteSession 删除会话及其索引
func (rs *RedisStore) DeleteSession(ctx context.Context, id string) error {
	data, err := rs.LoadSession(ctx, id)
	if err != nil {
		return err
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKeyPrefix+id)
		pipe.SRem(ctx, sessionIndexKey, id)
		if data != nil {
			pipe.SRem(ctx, ownerKeyPrefix+data.OwnerID, id)
		}
		return nil
	})
	return err
}

// ListSessions 按创建时间返回符合条件的会话；已过期的索引项顺带清理
func (rs *RedisStore) ListSessions(ctx context.Context, f Filter) ([]*SessionData, error) {
	ids, err := rs.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKeyPrefix + id
	}
	values, err := rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var stale []any
	sessions := make([]*SessionData, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		d, err := decodeSession([]byte(raw))
		if err != nil {
			return nil, err
		}
		if f.match(d) {
			sessions = append(sessions, d)
		}
	}
	if len(stale) > 0 {
		_ = rs.client.SRem(ctx, sessionIndexKey, stale...).Err()
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt != sessions[j].CreatedAt {
			return sessions[i].CreatedAt < sessions[j].CreatedAt
		}
		return sessions[i].ID < sessions[j].ID
	})
	if f.MaxResults > 0 && len(sessions) > f.MaxResults {
		sessions = sessions[:f.MaxResults]
	}
	return sessions, nil
}

// OwnerSessions 玩家创建的会话 ID
func (rs *RedisStore) OwnerSessions(ctx context.Context, ownerID string) ([]string, error) {
	return rs.client.SMembers(ctx, ownerKeyPrefix+ownerID).Result()
}

// --- 原子修改 ---

// JoinSession 占用一个公开名额
func (rs *RedisStore) JoinSession(ctx context.Context, id, playerID string) (*SessionData, error) {
	return rs.mutate(ctx, id, func(d *SessionData) error {
		if d.HasMember(playerID) {
			return apperrors.ErrAlreadyInSession
		}
		if d.OpenPublicConnections <= 0 {
			return apperrors.ErrSessionFull
		}
		if d.Started && !d.Settings.AllowJoinInProgress {
			return apperrors.Wrap(apperrors.ErrSessionFull, "session %s already in progress", id)
		}
		d.OpenPublicConnections--
		d.Members = append(d.Members, playerID)
		return nil
	})
}

// LeaveSession 释放玩家占用的名额
func (rs *RedisStore) LeaveSession(ctx context.Context, id, playerID string) (*SessionData, error) {
	return rs.mutate(ctx, id, func(d *SessionData) error {
		idx := slices.Index(d.Members, playerID)
		if idx < 0 {
			return apperrors.Wrap(apperrors.ErrSessionNotFound, "player %s not in session %s", playerID, id)
		}
		d.Members = slices.Delete(d.Members, idx, idx+1)
		d.OpenPublicConnections = min(d.OpenPublicConnections+1, d.Settings.NumPublicConnections)
		return nil
	})
}

// UpdateSettings 覆盖会话配置，只允许创建者操作
func (rs *RedisStore) UpdateSettings(ctx context.Context, id, ownerID string, settings protocol.SessionSettingsInfo) (*SessionData, error) {
	return rs.mutate(ctx, id, func(d *SessionData) error {
		if d.OwnerID != ownerID {
			return apperrors.ErrNotOwner
		}
		// 名额变化时保持已占用数量不变
		taken := d.Settings.NumPublicConnections - d.OpenPublicConnections
		d.Settings = settings
		d.OpenPublicConnections = max(settings.NumPublicConnections-taken, 0)
		// 已开始的会话保留 InProgress 广播
		if d.Started && d.Settings.AllowJoinInProgress {
			setSetting(&d.Settings, session.SettingInProgress, "true")
		}
		return nil
	})
}

// MarkStarted 标记会话开始，允许中途加入时广播 InProgress
func (rs *RedisStore) MarkStarted(ctx context.Context, id, ownerID string) (*SessionData, error) {
	return rs.mutate(ctx, id, func(d *SessionData) error {
		if d.OwnerID != ownerID {
			return apperrors.ErrNotOwner
		}
		d.Started = true
		if d.Settings.AllowJoinInProgress {
			setSetting(&d.Settings, session.SettingInProgress, "true")
		}
		return nil
	})
}

// mutate 在 WATCH 事务中读取-修改-写回会话
func (rs *RedisStore) mutate(ctx context.Context, id string, fn func(*SessionData) error) (*SessionData, error) {
	key := sessionKeyPrefix + id
	var result *SessionData

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperrors.Wrap(apperrors.ErrSessionNotFound, "session %s", id)
			}
			return err
		}
		d, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}

		jsonData, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("序列化会话数据失败: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, jsonData, rs.expiration)
			return nil
		})
		if err == nil {
			result = d
		}
		return err
	}

	for range maxTxRetries {
		err := rs.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue // 并发修改，重试
		}
		return result, err
	}
	return nil, apperrors.Wrap(apperrors.ErrStorage, "session %s: too much contention", id)
}

// SetSessionExpiration 设置会话过期时间
func (rs *RedisStore) SetSessionExpiration(ctx context.Context, id string, expiration time.Duration) error {
	return rs.client.Expire(ctx, sessionKeyPrefix+id, expiration).Err()
}

func decodeSession(raw []byte) (*SessionData, error) {
	var d SessionData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("反序列化会话数据失败: %w", err)
	}
	return &d, nil
}

func setSetting(s *protocol.SessionSettingsInfo, key, value string) {
	for i := range s.Settings {
		if s.Settings[i].Key == key {
			s.Settings[i].Value = value
			return
		}
	}
	s.Settings = append(s.Settings, protocol.SettingInfo{Key: key, Value: value})
}
