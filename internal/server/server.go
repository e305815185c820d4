package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/heptiolabs/healthcheck"
	"github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/netsession/internal/config"
	"github.com/palemoky/netsession/internal/server/handler"
	"github.com/palemoky/netsession/internal/server/metrics"
	"github.com/palemoky/netsession/internal/server/storage"
)

const (
	// 断线清理协程池大小
	cleanupWorkers = 16

	// 就绪检查中 Redis ping 的超时
	readyTimeout = 2 * time.Second
)

// Server 大厅 WebSocket 服务器
type Server struct {
	config  *config.Config
	redis   *redis.Client
	store   *storage.RedisStore
	clients cmap.ConcurrentMap[string, *Client]
	handler *handler.Handler
	metrics *metrics.Metrics
	health  healthcheck.Handler
	cleanup *ants.Pool

	upgrader       websocket.Upgrader
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	httpServer     *http.Server

	// 维护模式
	maintenanceMode atomic.Bool
}

// NewServer 创建服务器实例并连接 Redis
func NewServer(cfg *config.Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	return NewServerWithRedis(cfg, rdb)
}

// NewServerWithRedis 使用已有的 Redis 客户端创建服务器
func NewServerWithRedis(cfg *config.Config, rdb *redis.Client) (*Server, error) {
	pool, err := ants.NewPool(cleanupWorkers)
	if err != nil {
		return nil, fmt.Errorf("创建清理协程池失败: %w", err)
	}

	s := &Server{
		config:         cfg,
		redis:          rdb,
		store:          storage.NewRedisStore(rdb, cfg.Lobby.SessionTTLDuration()),
		clients:        cmap.New[*Client](),
		metrics:        metrics.New(),
		cleanup:        pool,
		originChecker:  NewOriginChecker(cfg.Server.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Server.MessageLimit),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:     s,
		Store:      s.store,
		Metrics:    s.metrics,
		MaxResults: cfg.Lobby.MaxResults,
	})

	s.health = healthcheck.NewMetricsHandler(s.metrics.Registry, "netsession")
	s.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(10000))
	s.health.AddReadinessCheck("redis", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
		defer cancel()
		return s.store.Ping(ctx)
	})
	s.health.AddReadinessCheck("maintenance", func() error {
		if s.IsMaintenanceMode() {
			return errors.New("server is in maintenance mode")
		}
		return nil
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Routes 服务器的 HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle(s.config.Server.MetricsPath, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/live", s.health.LiveEndpoint)
	mux.HandleFunc("/ready", s.health.ReadyEndpoint)
	return mux
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	addr := s.config.Server.Addr()

	// 启动监控 goroutine
	go s.monitorStats()

	log.Printf("🚀 大厅服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Store 会话存储
func (s *Server) Store() *storage.RedisStore {
	return s.store
}

// Metrics 服务器指标
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}
