// Package common provides shared styles and utilities for the UI.
package common

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Icon constants
const (
	HostIcon    = "👑"
	GuestIcon   = "🧑‍🚀"
	LANIcon     = "🏠"
	OnlineIcon  = "🌐"
	ProgressTag = "进行中"
)

// Lipgloss Styles
var (
	DocStyle      = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	PromptStyle   = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	HintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	HeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	NoticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	SuccessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// Cursor 菜单选中标记
func Cursor(selected bool) string {
	if selected {
		return "▶ "
	}
	return "  "
}

// FormatPing 格式化延迟，未知时显示占位符
func FormatPing(ms int) string {
	if ms < 0 {
		return "--"
	}
	return strconv.Itoa(ms) + "ms"
}
