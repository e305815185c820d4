package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/netsession/internal/flow"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 8080
  metrics_path: "/stats"
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"

redis:
  addr: "redis:6379"
  password: "secret"
  db: 1

lobby:
  session_ttl: 5
  max_results: 20

session:
  name: "Party"
  default_map: "Map_Arena"
  host_address: "10.0.0.2:7777"
  max_players: 8
  lan: true

client:
  lobby_url: "ws://lobby:1790/ws"
  player_name: "alice"
  mute: true
  sound_dir: "/usr/share/netsession/sounds"

screens:
  loading: "w_loading"
  main_menu: "w_menu"
  multiplayer_home: "w_home"
  multiplayer_join: "w_join"
  multiplayer_host: "w_host"
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/stats", cfg.Server.MetricsPath)
	assert.Len(t, cfg.Server.AllowedOrigins, 2)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, 5, cfg.Lobby.SessionTTL)
	assert.Equal(t, 20, cfg.Lobby.MaxResults)
	assert.Equal(t, "Party", cfg.Session.Name)
	assert.Equal(t, "Map_Arena", cfg.Session.DefaultMap)
	assert.Equal(t, "Map_MainMenu", cfg.Session.MainMenuMap)
	assert.Equal(t, 8, cfg.Session.MaxPlayers)
	assert.True(t, cfg.Session.LAN)
	assert.Equal(t, "alice", cfg.Client.PlayerName)
	assert.True(t, cfg.Client.Mute)
	assert.Equal(t, "/usr/share/netsession/sounds", cfg.Client.SoundDir)
	assert.Equal(t, flow.ResourceClass("w_join"), cfg.Screens.Classes()[flow.MultiplayerJoin])
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMetricsPath, cfg.Server.MetricsPath)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, defaultSessionTTL, cfg.Lobby.SessionTTL)
	assert.Equal(t, "Game", cfg.Session.Name)
	assert.Equal(t, "Map_SandBox", cfg.Session.DefaultMap)
	assert.Equal(t, defaultLobbyURL, cfg.Client.LobbyURL)
	assert.Equal(t, Default().Screens, cfg.Screens)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxPlayers, cfg.Session.MaxPlayers)
	assert.Equal(t, "0.0.0.0:1790", cfg.Server.Addr())

	classes := cfg.Screens.Classes()
	for _, s := range flow.ScreenStates() {
		assert.NotEmpty(t, classes[s], s.String())
	}
}

func TestDurationMethods(t *testing.T) {
	t.Parallel()

	lobby := &LobbyConfig{SessionTTL: 30}
	server := &ServerConfig{ShutdownTimeout: 10}
	client := &ClientConfig{DialTimeout: 5}

	assert.Equal(t, 30*time.Minute, lobby.SessionTTLDuration())
	assert.Equal(t, 10*time.Second, server.ShutdownTimeoutDuration())
	assert.Equal(t, 5*time.Second, client.DialTimeoutDuration())
}

func TestLoadFromEnv(t *testing.T) {
	// 修改环境变量，不能并行
	t.Setenv("NETSESSION_SERVER_HOST", "env-host")
	t.Setenv("NETSESSION_SERVER_PORT", "9999")
	t.Setenv("NETSESSION_REDIS_ADDR", "env-redis:6380")
	t.Setenv("NETSESSION_SESSION_NAME", "EnvGame")
	t.Setenv("NETSESSION_ALLOWED_ORIGINS", "http://a.com,http://b.com")
	t.Setenv("NETSESSION_SOUND_DIR", "/tmp/sounds")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "EnvGame", cfg.Session.Name)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/tmp/sounds", cfg.Client.SoundDir)
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("NETSESSION_PLAYER_NAME", "bob")

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Client.PlayerName)
	assert.Equal(t, defaultLobbyURL, cfg.Client.LobbyURL)

	t.Setenv("NETSESSION_SERVER_PORT", "not-a-number")
	_, err = LoadOrDefault("")
	assert.Error(t, err)
}
