// Package input handles keyboard input processing.
package input

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/session"
	"github.com/palemoky/netsession/internal/ui/model"
)

// 菜单项
var (
	MainMenuItems = []string{"多人游戏", "退出"}
	HomeMenuItems = []string{"创建会话", "查找会话", "返回主菜单"}
)

// HandleKeyPress handles keyboard input and returns whether it was handled.
func HandleKeyPress(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return true, tea.Quit
	}

	if m.InputMode() == flow.GameOnly {
		return handleGameKeys(m, msg)
	}

	switch m.State() {
	case flow.MainMenu:
		return handleMainMenu(m, msg)
	case flow.MultiplayerHome:
		return handleHomeMenu(m, msg)
	case flow.MultiplayerHost:
		return handleHostForm(m, msg)
	case flow.MultiplayerJoin:
		return handleJoinList(m, msg)
	default:
		// 加载和切换地图期间忽略输入
		return true, nil
	}
}

// notifyErr 把控制器返回的错误显示为临时通知
func notifyErr(m model.Model, err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return m.SetNotification(model.NotifyError, fmt.Sprintf("⚠️ %v", err), true)
}

// navigate 处理上下移动和数字选择，返回选中的菜单项（-1 表示未确认）
func navigate(m model.Model, msg tea.KeyMsg, count int) int {
	switch msg.String() {
	case "up", "k":
		m.SetSelected((m.Selected() + count - 1) % count)
	case "down", "j":
		m.SetSelected((m.Selected() + 1) % count)
	case "enter":
		return m.Selected()
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < count {
			m.SetSelected(int(s[0] - '1'))
			return m.Selected()
		}
	}
	return -1
}

func handleMainMenu(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch navigate(m, msg, len(MainMenuItems)) {
	case 0:
		m.Machine().ChangeState(flow.MultiplayerHome)
	case 1:
		return true, tea.Quit
	}
	if msg.Type == tea.KeyEsc {
		return true, tea.Quit
	}
	return true, nil
}

func handleHomeMenu(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.Machine().ChangeState(flow.MainMenu)
		return true, nil
	}

	switch navigate(m, msg, len(HomeMenuItems)) {
	case 0:
		m.Machine().ChangeState(flow.MultiplayerHost)
	case 1:
		return true, startSearch(m)
	case 2:
		m.Machine().ChangeState(flow.MainMenu)
	}
	return true, nil
}

// startSearch 进入加入界面并发起搜索
func startSearch(m model.Model) tea.Cmd {
	m.Machine().ChangeState(flow.MultiplayerJoin)
	m.SetSelected(0)
	return notifyErr(m, m.Controller().FindGames(m.LAN()))
}

func handleHostForm(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	form := m.Form()
	switch msg.Type {
	case tea.KeyEsc:
		m.Machine().ChangeState(flow.MultiplayerHome)
		return true, nil
	case tea.KeyTab, tea.KeyDown:
		return true, form.Next()
	case tea.KeyShiftTab, tea.KeyUp:
		return true, form.Prev()
	case tea.KeyCtrlL:
		m.SetLAN(!m.LAN())
		return true, nil
	case tea.KeyEnter:
		sub, err := form.Submit()
		if err != nil {
			return true, notifyErr(m, err)
		}
		if err := m.Controller().HostGame(m.LAN(), sub.MaxPlayers, sub.Settings); err != nil {
			// 请求未发出，回到表单
			if m.State() == flow.LoadingScreen {
				m.Machine().ChangeState(flow.MultiplayerHost)
			}
			return true, notifyErr(m, err)
		}
		return true, nil
	}
	// 其余按键交给输入框
	return false, nil
}

func handleJoinList(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	search := m.Controller().Search()
	results := search.Results()

	switch msg.String() {
	case "esc":
		m.Machine().ChangeState(flow.MultiplayerHome)
	case "r":
		return true, startSearch(m)
	case "l":
		m.SetLAN(!m.LAN())
		return true, startSearch(m)
	case "up", "k":
		if len(results) > 0 {
			m.SetSelected((m.Selected() + len(results) - 1) % len(results))
		}
	case "down", "j":
		if len(results) > 0 {
			m.SetSelected((m.Selected() + 1) % len(results))
		}
	case "enter":
		if search.Searching() || m.Selected() >= len(results) {
			return true, nil
		}
		return true, notifyErr(m, m.Controller().JoinGame(results[m.Selected()]))
	}
	return true, nil
}

func handleGameKeys(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.State() != flow.MultiplayerInGame {
		return true, nil
	}

	ctrl := m.Controller()
	if m.Editing() {
		switch msg.Type {
		case tea.KeyEsc:
			m.SetEditing(false)
			return true, nil
		case tea.KeyEnter:
			name := strings.TrimSpace(m.SettingInput().Value())
			m.SetEditing(false)
			if name == "" {
				return true, nil
			}
			return true, notifyErr(m, ctrl.SetOrUpdateSessionSetting(session.Setting{
				Key:   session.SettingServerName,
				Value: name,
			}))
		}
		return false, nil
	}

	switch msg.String() {
	case "q", "esc":
		return true, notifyErr(m, ctrl.LeaveGame())
	case "e":
		if ctrl.IsHost() {
			m.SetEditing(true)
		}
	}
	return true, nil
}
