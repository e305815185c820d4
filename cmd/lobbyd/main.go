package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/palemoky/netsession/internal/config"
	"github.com/palemoky/netsession/internal/server"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（为空时使用默认配置）")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
		if envErr := config.ApplyEnv(cfg); envErr != nil {
			log.Fatalf("解析环境变量失败: %v", envErr)
		}
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动服务器
	log.Println("🌐 会话大厅启动中...")
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("服务器启动失败: %v", err)
		}
	case <-ctx.Done():
		log.Println("正在关闭服务器...")
		srv.GracefulShutdown(cfg.Server.ShutdownTimeoutDuration())
		os.Exit(0)
	}
}
