// Package model defines the core types and interfaces for the UI.
package model

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/session"
)

// Screen 由状态机创建并显示的界面资源
type Screen struct {
	Class flow.ResourceClass
	Owner string
}

// NotificationType represents types of system notifications.
type NotificationType int

const (
	NotifyError        NotificationType = iota // 错误信息（临时）
	NotifySuccess                              // 操作成功（临时）
	NotifyDisconnected                         // 大厅连接断开（持久）
)

// SystemNotification represents a system notification.
type SystemNotification struct {
	Message   string
	Type      NotificationType
	Temporary bool // 是否为临时通知（3秒后自动消失）
}

// --- Tea Messages ---

// BootMsg 程序启动后进入主菜单
type BootMsg struct{}

// DrainMsg 拥有者线程队列有待执行的完成通知
type DrainMsg struct{}

// TravelArrivedMsg 地图切换完成
type TravelArrivedMsg struct {
	Seq int
}

// ClearSystemNotificationMsg clears temporary notifications.
type ClearSystemNotificationMsg struct{}

// --- Model Interface ---

// Model is the interface used by the view and input packages.
type Model interface {
	// 状态
	State() flow.GameState
	Screen() *Screen
	InputMode() flow.InputMode
	CursorVisible() bool
	Controller() *session.Controller
	Machine() *flow.Machine
	Options() Options

	// 玩家与网络
	PlayerName() string
	Latency() int64

	// 菜单与表单
	Selected() int
	SetSelected(int)
	LAN() bool
	SetLAN(bool)
	Form() *HostForm
	SettingInput() *textinput.Model
	Editing() bool
	SetEditing(bool)
	Spinner() spinner.Model

	// 地图切换
	Destination() string
	Listening() bool
	ConnectURL() string

	// 通知
	SetNotification(notifyType NotificationType, message string, temporary bool) tea.Cmd
	ClearNotification(notifyType NotificationType)
	GetCurrentNotification() *SystemNotification

	Width() int
	Height() int
}
