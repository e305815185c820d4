package handler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/netsession/internal/protocol"
	"github.com/palemoky/netsession/internal/server/metrics"
	"github.com/palemoky/netsession/internal/server/storage"
	"github.com/palemoky/netsession/internal/testutil"
)

type fixture struct {
	h      *Handler
	server *testutil.MockServer
	store  *storage.RedisStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := storage.NewRedisStore(rdb, time.Minute)
	server := new(testutil.MockServer)
	server.On("IsMaintenanceMode").Return(false).Maybe()

	h := NewHandler(HandlerDeps{
		Server:     server,
		Store:      store,
		Metrics:    metrics.New(),
		MaxResults: 10,
	})
	return &fixture{h: h, server: server, store: store}
}

func hostSettings(slots int) protocol.SessionSettingsInfo {
	return protocol.SessionSettingsInfo{
		NumPublicConnections: slots,
		ShouldAdvertise:      true,
		UsesPresence:         true,
		AllowJoinInProgress:  true,
		MapName:              "Map_SandBox",
		Settings:             []protocol.SettingInfo{{Key: "MAPNAME", Value: "Map_SandBox"}},
	}
}

func lastPayload[T any](t *testing.T, c *testutil.SimpleClient, want protocol.MessageType) *T {
	t.Helper()
	msg := c.Last()
	require.NotNil(t, msg)
	require.Equal(t, want, msg.Type)
	p, err := protocol.ParsePayload[T](msg)
	require.NoError(t, err)
	return p
}

func (f *fixture) create(t *testing.T, c *testutil.SimpleClient, slots int) string {
	t.Helper()
	f.h.Handle(c, protocol.MustNewMessage(protocol.MsgCreateSession, protocol.CreateSessionPayload{
		SessionName: "Game",
		HostAddress: "10.0.0.1:7777",
		Settings:    hostSettings(slots),
	}))
	res := lastPayload[protocol.SessionResultPayload](t, c, protocol.MsgSessionCreated)
	require.True(t, res.OK)
	require.NotEmpty(t, res.SessionID)
	return res.SessionID
}

func (f *fixture) join(c *testutil.SimpleClient, id string) {
	f.h.Handle(c, protocol.MustNewMessage(protocol.MsgJoinSession, protocol.JoinSessionPayload{
		SessionName: "Game",
		SessionID:   id,
	}))
}

func TestHandler_CreateSession(t *testing.T) {
	f := newFixture(t)
	host := testutil.NewSimpleClient("alice")

	id := f.create(t, host, 4)

	got, ok := host.GetSession("Game")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	data, err := f.store.LoadSession(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "alice", data.OwnerID)
	assert.Equal(t, 4, data.OpenPublicConnections)
	assert.Equal(t, "10.0.0.1:7777", data.HostAddress)

	// 同名会话不能重复创建
	f.h.Handle(host, protocol.MustNewMessage(protocol.MsgCreateSession, protocol.CreateSessionPayload{
		SessionName: "Game",
		Settings:    hostSettings(4),
	}))
	res := lastPayload[protocol.SessionResultPayload](t, host, protocol.MsgSessionCreated)
	assert.False(t, res.OK)
	assert.Equal(t, protocol.ErrCodeAlreadyIn, res.Code)
}

func TestHandler_CreateDuringMaintenance(t *testing.T) {
	f := newFixture(t)
	f.server.ExpectedCalls = nil
	f.server.On("IsMaintenanceMode").Return(true)
	host := testutil.NewSimpleClient("alice")

	f.h.Handle(host, protocol.MustNewMessage(protocol.MsgCreateSession, protocol.CreateSessionPayload{
		SessionName: "Game",
		Settings:    hostSettings(4),
	}))

	res := lastPayload[protocol.SessionResultPayload](t, host, protocol.MsgSessionCreated)
	assert.False(t, res.OK)
	assert.Equal(t, protocol.ErrCodeMaintenance, res.Code)
}

func TestHandler_StartSession(t *testing.T) {
	f := newFixture(t)
	host := testutil.NewSimpleClient("alice")
	id := f.create(t, host, 4)

	f.h.Handle(host, protocol.MustNewMessage(protocol.MsgStartSession, protocol.SessionNamePayload{SessionName: "Game"}))
	res := lastPayload[protocol.SessionResultPayload](t, host, protocol.MsgSessionStarted)
	assert.True(t, res.OK)

	data, err := f.store.LoadSession(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, data.Started)
	v, _ := data.Settings.Get("InProgress")
	assert.Equal(t, "true", v)

	other := testutil.NewSimpleClient("bob")
	f.h.Handle(other, protocol.MustNewMessage(protocol.MsgStartSession, protocol.SessionNamePayload{SessionName: "Game"}))
	res = lastPayload[protocol.SessionResultPayload](t, other, protocol.MsgSessionStarted)
	assert.False(t, res.OK)
	assert.Equal(t, protocol.ErrCodeSessionNotFound, res.Code)
}

func TestHandler_FindSessions(t *testing.T) {
	f := newFixture(t)
	f.create(t, testutil.NewSimpleClient("alice"), 4)
	f.create(t, testutil.NewSimpleClient("carol"), 2)

	seeker := testutil.NewSimpleClient("bob")
	f.h.Handle(seeker, protocol.MustNewMessage(protocol.MsgFindSessions, protocol.FindSessionsPayload{
		MaxResults: 100000000,
		Presence:   true,
	}))

	res := lastPayload[protocol.SessionsFoundPayload](t, seeker, protocol.MsgSessionsFound)
	assert.True(t, res.OK)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "alice", res.Results[0].OwnerID)
	assert.Equal(t, "carol", res.Results[1].OwnerID)
	assert.Equal(t, 2, res.Results[1].NumOpenPublicConnections)

	f.h.Handle(seeker, protocol.MustNewMessage(protocol.MsgFindSessions, protocol.FindSessionsPayload{IsLAN: true}))
	res = lastPayload[protocol.SessionsFoundPayload](t, seeker, protocol.MsgSessionsFound)
	assert.True(t, res.OK)
	assert.Empty(t, res.Results)
}

func TestHandler_FindRepliesCarryRequestID(t *testing.T) {
	f := newFixture(t)
	seeker := testutil.NewSimpleClient("bob")

	req := protocol.MustNewMessage(protocol.MsgFindSessions, protocol.FindSessionsPayload{})
	req.ID = "find-7"
	f.h.Handle(seeker, req)
	require.NotNil(t, seeker.Last())
	assert.Equal(t, protocol.MsgSessionsFound, seeker.Last().Type)
	assert.Equal(t, "find-7", seeker.Last().ID)

	bad := &protocol.Message{Type: protocol.MsgFindSessions, ID: "find-8", Payload: []byte("{not json")}
	f.h.Handle(seeker, bad)
	assert.Equal(t, protocol.MsgError, seeker.Last().Type)
	assert.Equal(t, "find-8", seeker.Last().ID)
}

func TestHandler_JoinSession(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, testutil.NewSimpleClient("alice"), 1)

	bob := testutil.NewSimpleClient("bob")
	f.join(bob, id)
	res := lastPayload[protocol.SessionJoinedPayload](t, bob, protocol.MsgSessionJoined)
	assert.Equal(t, protocol.JoinResultSuccess, res.Result)
	assert.Equal(t, "10.0.0.1:7777", res.ConnectString)

	f.join(bob, id)
	res = lastPayload[protocol.SessionJoinedPayload](t, bob, protocol.MsgSessionJoined)
	assert.Equal(t, protocol.JoinResultAlreadyInSession, res.Result)

	carol := testutil.NewSimpleClient("carol")
	f.join(carol, id)
	res = lastPayload[protocol.SessionJoinedPayload](t, carol, protocol.MsgSessionJoined)
	assert.Equal(t, protocol.JoinResultSessionFull, res.Result)

	f.join(carol, "missing")
	res = lastPayload[protocol.SessionJoinedPayload](t, carol, protocol.MsgSessionJoined)
	assert.Equal(t, protocol.JoinResultSessionNotFound, res.Result)
	assert.Empty(t, res.ConnectString)
}

func TestHandler_UpdateSession(t *testing.T) {
	f := newFixture(t)
	host := testutil.NewSimpleClient("alice")
	id := f.create(t, host, 4)

	settings := hostSettings(4)
	settings.Settings = append(settings.Settings, protocol.SettingInfo{Key: "foo", Value: "bar"})
	f.h.Handle(host, protocol.MustNewMessage(protocol.MsgUpdateSession, protocol.UpdateSessionPayload{
		SessionName: "Game",
		Settings:    settings,
		Refresh:     true,
	}))
	res := lastPayload[protocol.SessionResultPayload](t, host, protocol.MsgSessionUpdated)
	assert.True(t, res.OK)

	data, err := f.store.LoadSession(context.Background(), id)
	require.NoError(t, err)
	v, ok := data.Settings.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", v)

	// 加入者不能更新
	bob := testutil.NewSimpleClient("bob")
	f.join(bob, id)
	f.h.Handle(bob, protocol.MustNewMessage(protocol.MsgUpdateSession, protocol.UpdateSessionPayload{
		SessionName: "Game",
		Settings:    settings,
	}))
	res = lastPayload[protocol.SessionResultPayload](t, bob, protocol.MsgSessionUpdated)
	assert.False(t, res.OK)
	assert.Equal(t, protocol.ErrCodeNotOwner, res.Code)
}

func TestHandler_DestroySession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := testutil.NewSimpleClient("alice")
	id := f.create(t, host, 2)

	bob := testutil.NewSimpleClient("bob")
	f.join(bob, id)

	// 加入者离开只释放名额
	f.h.Handle(bob, protocol.MustNewMessage(protocol.MsgDestroySession, protocol.SessionNamePayload{SessionName: "Game"}))
	res := lastPayload[protocol.SessionResultPayload](t, bob, protocol.MsgSessionDestroyed)
	assert.True(t, res.OK)
	_, ok := bob.GetSession("Game")
	assert.False(t, ok)

	data, err := f.store.LoadSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, 2, data.OpenPublicConnections)

	// 创建者销毁会话
	f.h.Handle(host, protocol.MustNewMessage(protocol.MsgDestroySession, protocol.SessionNamePayload{SessionName: "Game"}))
	res = lastPayload[protocol.SessionResultPayload](t, host, protocol.MsgSessionDestroyed)
	assert.True(t, res.OK)

	data, err = f.store.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, data)

	// 没有会话时失败
	f.h.Handle(host, protocol.MustNewMessage(protocol.MsgDestroySession, protocol.SessionNamePayload{SessionName: "Game"}))
	res = lastPayload[protocol.SessionResultPayload](t, host, protocol.MsgSessionDestroyed)
	assert.False(t, res.OK)
	assert.Equal(t, protocol.ErrCodeSessionNotFound, res.Code)
}

func TestHandler_OnDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := testutil.NewSimpleClient("alice")
	hosted := f.create(t, host, 2)

	other := testutil.NewSimpleClient("carol")
	joined := f.create(t, other, 2)
	f.h.Handle(host, protocol.MustNewMessage(protocol.MsgJoinSession, protocol.JoinSessionPayload{
		SessionName: "Party",
		SessionID:   joined,
	}))
	require.Equal(t, protocol.JoinResultSuccess,
		lastPayload[protocol.SessionJoinedPayload](t, host, protocol.MsgSessionJoined).Result)

	f.h.OnDisconnect(host)

	data, err := f.store.LoadSession(ctx, hosted)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = f.store.LoadSession(ctx, joined)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, 2, data.OpenPublicConnections)
	assert.Empty(t, host.Sessions())
}

func TestHandler_PingAndUnknown(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewSimpleClient("alice")

	f.h.Handle(c, protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 42}))
	pong := lastPayload[protocol.PongPayload](t, c, protocol.MsgPong)
	assert.Equal(t, int64(42), pong.ClientTimestamp)
	assert.NotZero(t, pong.ServerTimestamp)

	f.h.Handle(c, &protocol.Message{Type: "bogus"})
	e := lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, e.Code)
}

func TestHandler_InvalidPayload(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewSimpleClient("alice")

	f.h.Handle(c, &protocol.Message{Type: protocol.MsgJoinSession, Payload: []byte("{not json")})
	e := lastPayload[protocol.ErrorPayload](t, c, protocol.MsgError)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, e.Code)
}
