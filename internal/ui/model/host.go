package model

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/logger"
	"github.com/palemoky/netsession/internal/session"
)

// --- flow.UIHost ---

// CreateResource 只为配置过的资源类别创建界面
func (m *App) CreateResource(owner string, class flow.ResourceClass) flow.Resource {
	if !m.classes[class] {
		logger.LogWarn("未知的界面资源类别: %s", class)
		return nil
	}
	return &Screen{Class: class, Owner: owner}
}

func (m *App) Show(r flow.Resource) {
	screen, ok := r.(*Screen)
	if !ok {
		return
	}
	m.visible = screen
	m.selected = 0
}

func (m *App) Hide(r flow.Resource) {
	if screen, ok := r.(*Screen); ok && screen == m.visible {
		m.visible = nil
	}
}

// --- flow.InputBinder ---

func (m *App) SetInputMode(mode flow.InputMode, showCursor bool) {
	m.inputMode = mode
	m.cursorVisible = showCursor
	m.pending = append(m.pending, m.form.Activate(showCursor))
	if mode == flow.GameOnly {
		// 菜单输入失效
		m.editing = false
		m.settingInput.Blur()
	}
}

// --- session.TravelHost ---

func (m *App) OpenDestination(name string, listen bool) {
	m.destination = name
	m.listening = listen
	m.connectURL = ""
	m.scheduleArrival()
}

func (m *App) ClientTravel(url string) {
	m.destination = ""
	m.listening = false
	m.connectURL = url
	m.scheduleArrival()
}

func (m *App) scheduleArrival() {
	m.travelSeq++
	seq := m.travelSeq
	m.pending = append(m.pending, tea.Tick(travelDelay, func(time.Time) tea.Msg {
		return TravelArrivedMsg{Seq: seq}
	}))
}

// arrive 地图加载完成：回到主菜单或进入游戏
func (m *App) arrive(seq int) {
	if seq != m.travelSeq || m.State() != flow.Travelling {
		return
	}
	if m.connectURL == "" && m.destination == m.opts.MainMenuMap {
		m.machine.ChangeState(flow.MainMenu)
		return
	}
	m.machine.ChangeState(flow.MultiplayerInGame)
}

// --- session.Observer ---

func (m *App) OperationSucceeded(op session.Operation) {
	switch op {
	case session.OpUpdate:
		m.pending = append(m.pending, m.SetNotification(NotifySuccess, "✅ 会话设置已更新", true))
	case session.OpJoin:
		m.pending = append(m.pending, m.SetNotification(NotifySuccess, "✅ 已加入会话", true))
	}
}

func (m *App) OperationFailed(op session.Operation, err error) {
	logger.LogError("会话操作 %s 失败: %v", op, err)
	m.pending = append(m.pending, m.SetNotification(NotifyError, fmt.Sprintf("❌ %s失败: %v", operationLabel(op), err), true))
	if m.opts.OnFailure != nil {
		m.opts.OnFailure()
	}

	// 创建或开始失败时回到主机表单，允许重试
	if (op == session.OpCreate || op == session.OpStart) && m.State() == flow.LoadingScreen {
		m.machine.ChangeState(flow.MultiplayerHost)
	}
}

// ConnectionLost 大厅连接断开
func (m *App) ConnectionLost(err error) {
	m.pending = append(m.pending, m.SetNotification(NotifyDisconnected, "📴 与大厅的连接已断开", false))
	logger.LogWarn("大厅连接断开: %v", err)
	// 连接已不可用，无法通知大厅离开，只在本地释放
	if m.controller != nil {
		m.controller.Abandon()
	}
	if m.State() != flow.MainMenu && m.State() != flow.Travelling {
		m.machine.ChangeState(flow.MainMenu)
	}
}

func operationLabel(op session.Operation) string {
	switch op {
	case session.OpCreate:
		return "创建会话"
	case session.OpStart:
		return "开始会话"
	case session.OpFind:
		return "搜索会话"
	case session.OpJoin:
		return "加入会话"
	case session.OpUpdate:
		return "更新设置"
	case session.OpDestroy:
		return "离开会话"
	default:
		return string(op)
	}
}
