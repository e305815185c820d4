// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/session"
	"github.com/palemoky/netsession/internal/ui/common"
	"github.com/palemoky/netsession/internal/ui/input"
	"github.com/palemoky/netsession/internal/ui/model"
)

// Render 按当前状态渲染界面
func Render(m model.Model) string {
	state := m.State()

	// 界面状态必须有可见的界面资源
	if state.HasScreen() && m.Screen() == nil {
		return frame(m, common.ErrorStyle.Render(fmt.Sprintf("界面资源缺失: %s", state)))
	}

	var body string
	switch state {
	case flow.LoadingScreen:
		body = LoadingView(m)
	case flow.MainMenu:
		body = MenuView(m, "🎮 主菜单", input.MainMenuItems)
	case flow.MultiplayerHome:
		body = MenuView(m, "🌐 多人游戏", input.HomeMenuItems)
	case flow.MultiplayerHost:
		body = HostView(m)
	case flow.MultiplayerJoin:
		body = JoinView(m)
	case flow.Travelling:
		body = TravelView(m)
	case flow.MultiplayerInGame:
		body = InGameView(m)
	default:
		body = "启动中..."
	}
	return frame(m, body)
}

// frame 标题栏、通知和状态栏
func frame(m model.Model, body string) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s  ·  %s  ·  延迟 %s",
		common.TitleStyle("netsession"),
		m.PlayerName(),
		common.FormatPing(int(m.Latency())))
	sb.WriteString(header)
	sb.WriteString("\n\n")

	if n := m.GetCurrentNotification(); n != nil {
		style := common.NoticeStyle
		switch n.Type {
		case model.NotifyError:
			style = common.ErrorStyle
		case model.NotifySuccess:
			style = common.SuccessStyle
		}
		sb.WriteString(style.Render(n.Message))
		sb.WriteString("\n\n")
	}

	sb.WriteString(body)
	sb.WriteString("\n\n")
	sb.WriteString(common.HintStyle.Render(fmt.Sprintf("[%s] 输入: %s", m.State(), m.InputMode())))
	return sb.String()
}

// MenuView 渲染编号菜单
func MenuView(m model.Model, title string, items []string) string {
	lines := []string{common.TitleStyle(title), ""}
	for i, item := range items {
		line := fmt.Sprintf("%s%d. %s", common.Cursor(i == m.Selected()), i+1, item)
		if i == m.Selected() {
			line = common.SelectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	menu := common.BoxStyle.Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return menu + "\n" + common.HintStyle.Render("↑/↓ 选择 · Enter 确认 · Esc 返回")
}

// LoadingView 创建会话等待
func LoadingView(m model.Model) string {
	return fmt.Sprintf("%s 正在创建会话...", m.Spinner().View())
}

// HostView 创建会话表单
func HostView(m model.Model) string {
	form := m.Form()
	labels := []string{"服务器名称", "最大玩家数", "地图"}

	var lines []string
	lines = append(lines, common.TitleStyle("👑 创建会话"), "")
	for i, in := range form.Inputs() {
		label := fmt.Sprintf("%s%-6s", common.Cursor(i == form.Focused()), labels[i])
		lines = append(lines, label+" "+in.View())
	}
	lines = append(lines, "", fmt.Sprintf("  网络: %s", networkLabel(m.LAN())))

	box := common.BoxStyle.Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return box + "\n" + common.HintStyle.Render("Tab 切换字段 · Ctrl+L 切换局域网 · Enter 创建 · Esc 返回")
}

// JoinView 搜索结果列表
func JoinView(m model.Model) string {
	search := m.Controller().Search()

	var sb strings.Builder
	sb.WriteString(common.TitleStyle(fmt.Sprintf("🔍 查找会话 (%s)", networkLabel(m.LAN()))))
	sb.WriteString("\n\n")

	switch {
	case search.Searching():
		sb.WriteString(fmt.Sprintf("%s 正在搜索...", m.Spinner().View()))
	case search.Finished() && search.Len() == 0:
		sb.WriteString("没有找到会话")
	case search.Finished():
		sb.WriteString(ResultsTable(search.Results(), m.Selected()))
	default:
		sb.WriteString("按 R 开始搜索")
	}

	sb.WriteString("\n")
	sb.WriteString(common.HintStyle.Render("↑/↓ 选择 · Enter 加入 · R 刷新 · L 切换局域网 · Esc 返回"))
	return sb.String()
}

// ResultsTable 渲染搜索结果表格
func ResultsTable(results []session.SearchResult, selected int) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := ""
		if r.InProgress {
			status = common.ProgressTag
		}
		rows = append(rows, []string{
			r.ServerName,
			r.MapName,
			fmt.Sprintf("%d/%d", r.CurrentPlayers, r.MaxPlayers),
			status,
			common.FormatPing(r.PingInMs),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("服务器", "地图", "玩家", "状态", "延迟").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return common.HeaderStyle.Padding(0, 1)
			case row == selected:
				return common.SelectedStyle.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		}).
		Render()
}

// TravelView 地图切换中
func TravelView(m model.Model) string {
	target := m.Destination()
	switch {
	case m.ConnectURL() != "":
		target = "连接 " + m.ConnectURL()
	case m.Listening():
		target += " (监听)"
	}
	return fmt.Sprintf("%s 正在前往 %s ...", m.Spinner().View(), target)
}

// InGameView 会话信息
func InGameView(m model.Model) string {
	ctrl := m.Controller()

	var lines []string
	role := common.GuestIcon + " 客户端"
	if ctrl.IsHost() {
		role = common.HostIcon + " 主机"
	}
	lines = append(lines, common.TitleStyle("🕹️ 游戏中"), "", "身份: "+role)

	if m.ConnectURL() != "" {
		lines = append(lines, "主机地址: "+m.ConnectURL())
	} else if m.Destination() != "" {
		lines = append(lines, "地图: "+m.Destination())
	}

	if d := ctrl.Descriptor(); d != nil {
		lines = append(lines,
			fmt.Sprintf("网络: %s · 公开位置: %d", networkLabel(d.IsLAN), d.NumPublicConnections),
			"", "会话设置:")
		for _, s := range d.Settings.Entries() {
			lines = append(lines, fmt.Sprintf("  %s = %s", s.Key, s.Value))
		}
	}

	box := common.BoxStyle.Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	var sb strings.Builder
	sb.WriteString(box)
	sb.WriteString("\n")
	if m.Editing() {
		sb.WriteString("新名称: " + m.SettingInput().View() + "\n")
		sb.WriteString(common.HintStyle.Render("Enter 保存 · Esc 取消"))
		return sb.String()
	}
	hint := "Q 离开会话"
	if ctrl.IsHost() {
		hint = "E 修改服务器名称 · " + hint
	}
	sb.WriteString(common.HintStyle.Render(hint))
	return sb.String()
}

func networkLabel(lan bool) string {
	if lan {
		return common.LANIcon + " 局域网"
	}
	return common.OnlineIcon + " 互联网"
}
