package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/netsession/internal/flow"
)

// 默认值
const (
	defaultHost        = "0.0.0.0"
	defaultPort        = 1790
	defaultMetricsPath = "/metrics"
	defaultRedisAddr   = "localhost:6379"
	defaultSessionTTL  = 30
	defaultMaxResults  = 50
	defaultMaxPlayers  = 4
	defaultLobbyURL    = "ws://localhost:1790/ws"
)

// Config 大厅服务端与客户端共用的配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Lobby   LobbyConfig   `yaml:"lobby"`
	Session SessionConfig `yaml:"session"`
	Client  ClientConfig  `yaml:"client"`
	Screens ScreensConfig `yaml:"screens"`
}

// ServerConfig 大厅 WebSocket 服务器配置
type ServerConfig struct {
	Host            string   `yaml:"host" env:"NETSESSION_SERVER_HOST"`
	Port            int      `yaml:"port" env:"NETSESSION_SERVER_PORT"`
	MetricsPath     string   `yaml:"metrics_path" env:"NETSESSION_METRICS_PATH"`
	AllowedOrigins  []string `yaml:"allowed_origins" env:"NETSESSION_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout int      `yaml:"shutdown_timeout" env:"NETSESSION_SHUTDOWN_TIMEOUT"` // 优雅关闭超时（秒）
	MessageLimit    int      `yaml:"message_limit" env:"NETSESSION_MESSAGE_LIMIT"`       // 每个连接每秒最多消息数
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"NETSESSION_REDIS_ADDR"`
	Password string `yaml:"password" env:"NETSESSION_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"NETSESSION_REDIS_DB"`
}

// LobbyConfig 会话注册表配置
type LobbyConfig struct {
	SessionTTL int `yaml:"session_ttl" env:"NETSESSION_SESSION_TTL"` // 广播会话过期时间（分钟）
	MaxResults int `yaml:"max_results" env:"NETSESSION_MAX_RESULTS"` // 单次搜索返回上限
}

// SessionConfig 会话控制器配置
type SessionConfig struct {
	Name        string `yaml:"name" env:"NETSESSION_SESSION_NAME"`
	DefaultMap  string `yaml:"default_map" env:"NETSESSION_DEFAULT_MAP"`
	MainMenuMap string `yaml:"main_menu_map" env:"NETSESSION_MAIN_MENU_MAP"`
	HostAddress string `yaml:"host_address" env:"NETSESSION_HOST_ADDRESS"` // 作为主机时告知加入者的连接地址
	MaxPlayers  int    `yaml:"max_players" env:"NETSESSION_MAX_PLAYERS"`
	LAN         bool   `yaml:"lan" env:"NETSESSION_LAN"`
}

// ClientConfig 客户端配置
type ClientConfig struct {
	LobbyURL    string `yaml:"lobby_url" env:"NETSESSION_LOBBY_URL"`
	DialRetries int    `yaml:"dial_retries" env:"NETSESSION_DIAL_RETRIES"`
	DialTimeout int    `yaml:"dial_timeout" env:"NETSESSION_DIAL_TIMEOUT"` // 单次拨号超时（秒）
	PlayerName  string `yaml:"player_name" env:"NETSESSION_PLAYER_NAME"`
	Mute        bool   `yaml:"mute" env:"NETSESSION_MUTE"`           // 关闭提示音
	SoundDir    string `yaml:"sound_dir" env:"NETSESSION_SOUND_DIR"` // 自定义提示音目录，同名 mp3/wav 覆盖内置音
	LogLevel    string `yaml:"log_level" env:"NETSESSION_LOG_LEVEL"` // info/warn/error
}

// ScreensConfig 各界面状态使用的资源类别
type ScreensConfig struct {
	Loading         string `yaml:"loading"`
	MainMenu        string `yaml:"main_menu"`
	MultiplayerHome string `yaml:"multiplayer_home"`
	MultiplayerJoin string `yaml:"multiplayer_join"`
	MultiplayerHost string `yaml:"multiplayer_host"`
}

// Classes 转换为状态机使用的资源类别表
func (s ScreensConfig) Classes() flow.ResourceClasses {
	return flow.ResourceClasses{
		flow.LoadingScreen:   flow.ResourceClass(s.Loading),
		flow.MainMenu:        flow.ResourceClass(s.MainMenu),
		flow.MultiplayerHome: flow.ResourceClass(s.MultiplayerHome),
		flow.MultiplayerJoin: flow.ResourceClass(s.MultiplayerJoin),
		flow.MultiplayerHost: flow.ResourceClass(s.MultiplayerHost),
	}
}

// SessionTTLDuration 返回会话过期时长
func (c *LobbyConfig) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Minute
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// DialTimeoutDuration 返回单次拨号超时时长
func (c *ClientConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Second
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load 加载配置文件，再用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault 路径为空时使用默认配置（仍然应用环境变量）
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 用 NETSESSION_* 环境变量覆盖配置
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	d := Default()

	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = d.Server.MetricsPath
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.MessageLimit == 0 {
		c.Server.MessageLimit = d.Server.MessageLimit
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = d.Redis.Addr
	}
	if c.Lobby.SessionTTL == 0 {
		c.Lobby.SessionTTL = d.Lobby.SessionTTL
	}
	if c.Lobby.MaxResults == 0 {
		c.Lobby.MaxResults = d.Lobby.MaxResults
	}
	if c.Session.Name == "" {
		c.Session.Name = d.Session.Name
	}
	if c.Session.DefaultMap == "" {
		c.Session.DefaultMap = d.Session.DefaultMap
	}
	if c.Session.MainMenuMap == "" {
		c.Session.MainMenuMap = d.Session.MainMenuMap
	}
	if c.Session.HostAddress == "" {
		c.Session.HostAddress = d.Session.HostAddress
	}
	if c.Session.MaxPlayers == 0 {
		c.Session.MaxPlayers = d.Session.MaxPlayers
	}
	if c.Client.LobbyURL == "" {
		c.Client.LobbyURL = d.Client.LobbyURL
	}
	if c.Client.DialRetries == 0 {
		c.Client.DialRetries = d.Client.DialRetries
	}
	if c.Client.DialTimeout == 0 {
		c.Client.DialTimeout = d.Client.DialTimeout
	}
	if c.Screens == (ScreensConfig{}) {
		c.Screens = d.Screens
	}
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			MetricsPath:     defaultMetricsPath,
			ShutdownTimeout: 10,
			MessageLimit:    20,
		},
		Redis: RedisConfig{
			Addr: defaultRedisAddr,
		},
		Lobby: LobbyConfig{
			SessionTTL: defaultSessionTTL,
			MaxResults: defaultMaxResults,
		},
		Session: SessionConfig{
			Name:        "Game",
			DefaultMap:  "Map_SandBox",
			MainMenuMap: "Map_MainMenu",
			HostAddress: "127.0.0.1:7777",
			MaxPlayers:  defaultMaxPlayers,
		},
		Client: ClientConfig{
			LobbyURL:    defaultLobbyURL,
			DialRetries: 5,
			DialTimeout: 5,
		},
		Screens: ScreensConfig{
			Loading:         "loading",
			MainMenu:        "main_menu",
			MultiplayerHome: "multiplayer_home",
			MultiplayerJoin: "multiplayer_join",
			MultiplayerHost: "multiplayer_host",
		},
	}
}
