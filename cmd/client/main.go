package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/netsession/internal/config"
	"github.com/palemoky/netsession/internal/dispatch"
	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/logger"
	"github.com/palemoky/netsession/internal/provider/remote"
	"github.com/palemoky/netsession/internal/session"
	"github.com/palemoky/netsession/internal/sound"
	"github.com/palemoky/netsession/internal/transport"
	"github.com/palemoky/netsession/internal/ui"
	"github.com/palemoky/netsession/internal/ui/model"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（为空时使用默认配置）")
	lobbyURL := flag.String("lobby", "", "大厅地址，覆盖配置")
	name := flag.String("name", "", "玩家昵称，覆盖配置")
	flag.Parse()

	// 界面占用终端，日志写入文件
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
	}
	defer logger.Close()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *lobbyURL != "" {
		cfg.Client.LobbyURL = *lobbyURL
	}
	if *name != "" {
		cfg.Client.PlayerName = *name
	}
	logger.SetLevel(logger.ParseLevel(cfg.Client.LogLevel))

	client, err := transport.Dial(context.Background(), cfg.Client.LobbyURL, transport.DialOptions{
		PlayerName: cfg.Client.PlayerName,
		Retries:    cfg.Client.DialRetries,
		Timeout:    cfg.Client.DialTimeoutDuration(),
	})
	if err != nil {
		log.Fatalf("连接大厅失败: %v", err)
	}
	defer client.Close()

	queue := dispatch.NewQueue()
	defer queue.Close()

	var sm *sound.SoundManager
	if !cfg.Client.Mute {
		sm = sound.NewSoundManager(cfg.Client.SoundDir)
		if err := sm.Init(); err != nil {
			logger.LogWarn("初始化音效失败: %v", err)
			sm = nil
		} else {
			defer sm.Close()
		}
	}

	opts := model.Options{
		PlayerName:  client.PlayerName,
		MaxPlayers:  cfg.Session.MaxPlayers,
		LAN:         cfg.Session.LAN,
		MainMenuMap: cfg.Session.MainMenuMap,
		Classes:     cfg.Screens.Classes(),
		Latency:     client.Latency,
	}
	if sm != nil {
		opts.OnFailure = func() { sm.Play(sound.CueNegative) }
	}
	app := ui.NewApp(opts, queue)
	classes := opts.Classes

	provider := remote.New(client, app.Post, cfg.Session.HostAddress)
	machine := flow.NewMachine(app, app, classes, client.PlayerName)
	controller := session.NewController(provider, machine, app, session.Options{
		SessionName: cfg.Session.Name,
		DefaultMap:  cfg.Session.DefaultMap,
		MainMenuMap: cfg.Session.MainMenuMap,
	})
	app.Bind(machine, controller)
	provider.OnConnectionLost().Add(app.ConnectionLost)

	if sm != nil {
		sound.Bind(machine, sm)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetProgram(p)
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
