package model

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/netsession/internal/dispatch"
	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/session"
	"github.com/palemoky/netsession/internal/ui/common"
)

const (
	// 模拟地图加载耗时
	travelDelay = 600 * time.Millisecond
	// 临时通知显示时长
	notificationTTL = 3 * time.Second
)

// Options 界面配置
type Options struct {
	PlayerName  string
	ServerName  string
	MaxPlayers  int
	LAN         bool
	MainMenuMap string
	Classes     flow.ResourceClasses
	Latency     func() int64
	OnFailure   func() // 会话操作失败时调用，例如播放提示音
}

// App 终端界面：同时是状态机的界面宿主、输入绑定和控制器的地图切换宿主
type App struct {
	opts    Options
	queue   *dispatch.Queue
	program atomic.Pointer[tea.Program]

	machine    *flow.Machine
	controller *session.Controller
	classes    map[flow.ResourceClass]bool

	// 界面资源与输入
	visible       *Screen
	inputMode     flow.InputMode
	cursorVisible bool

	// 菜单与表单
	selected     int
	lan          bool
	form         *HostForm
	settingInput textinput.Model
	editing      bool
	spinner      spinner.Model

	// 地图切换
	destination string
	listening   bool
	connectURL  string
	travelSeq   int

	notifications map[NotificationType]*SystemNotification
	pending       []tea.Cmd

	width  int
	height int

	// View renderer (injected to break circular import)
	viewRenderer func(Model) string

	// Key handler (injected to break circular import)
	keyHandler func(Model, tea.KeyMsg) (bool, tea.Cmd)
}

// NewApp 创建界面；之后需调用 Bind 绑定状态机和控制器
func NewApp(opts Options, queue *dispatch.Queue) *App {
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = 4
	}
	if opts.ServerName == "" {
		opts.ServerName = opts.PlayerName + " 的服务器"
	}
	if opts.MainMenuMap == "" {
		opts.MainMenuMap = session.DefaultMainMenuMap
	}

	classes := make(map[flow.ResourceClass]bool, len(opts.Classes))
	for _, c := range opts.Classes {
		if c != "" {
			classes[c] = true
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = common.NoticeStyle

	si := textinput.New()
	si.Placeholder = "新的服务器名称"
	si.CharLimit = 32
	si.Width = 32

	return &App{
		opts:          opts,
		queue:         queue,
		classes:       classes,
		lan:           opts.LAN,
		form:          NewHostForm(opts.ServerName, opts.MaxPlayers),
		settingInput:  si,
		spinner:       sp,
		notifications: make(map[NotificationType]*SystemNotification),
	}
}

// Bind 绑定状态机和控制器
func (m *App) Bind(machine *flow.Machine, controller *session.Controller) {
	m.machine = machine
	m.controller = controller
	controller.SetObserver(m)
}

// SetProgram 设置运行中的程序，用于唤醒事件循环
func (m *App) SetProgram(p *tea.Program) {
	m.program.Store(p)
}

// Post 把完成通知投递到界面事件循环，可在任意协程调用
func (m *App) Post(fn func()) bool {
	if !m.queue.Post(fn) {
		return false
	}
	if p := m.program.Load(); p != nil {
		p.Send(DrainMsg{})
	}
	return true
}

// SetViewRenderer sets the view rendering function.
func (m *App) SetViewRenderer(fn func(Model) string) {
	m.viewRenderer = fn
}

// SetKeyHandler sets the keyboard event handler function.
func (m *App) SetKeyHandler(fn func(Model, tea.KeyMsg) (bool, tea.Cmd)) {
	m.keyHandler = fn
}

func (m *App) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		func() tea.Msg { return BootMsg{} },
	)
}

// Update handles tea messages.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case BootMsg:
		m.machine.ChangeState(flow.Startup)
		m.machine.ChangeState(flow.MainMenu)

	case DrainMsg:
		m.queue.Drain()

	case TravelArrivedMsg:
		m.arrive(msg.Seq)

	case ClearSystemNotificationMsg:
		m.ClearNotification(NotifyError)
		m.ClearNotification(NotifySuccess)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if m.keyHandler != nil {
			handled, keyCmd := m.keyHandler(m, msg)
			cmds = append(cmds, keyCmd)
			if handled {
				cmds = append(cmds, m.takePending()...)
				return m, tea.Batch(cmds...)
			}
		}
	}

	// 未处理的消息交给当前输入框
	switch {
	case m.editing:
		var cmd tea.Cmd
		m.settingInput, cmd = m.settingInput.Update(msg)
		cmds = append(cmds, cmd)
	case m.State() == flow.MultiplayerHost:
		cmds = append(cmds, m.form.Update(msg))
	}

	cmds = append(cmds, m.takePending()...)
	return m, tea.Batch(cmds...)
}

// View renders the model.
func (m *App) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	content := "View renderer not initialized"
	if m.viewRenderer != nil {
		content = m.viewRenderer(m)
	}
	return common.DocStyle.Render(lipgloss.NewStyle().MaxWidth(m.width).Render(content))
}

func (m *App) takePending() []tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return cmds
}

// --- Model interface implementation ---

func (m *App) State() flow.GameState {
	if m.machine == nil {
		return flow.None
	}
	return m.machine.Current()
}

func (m *App) Screen() *Screen                 { return m.visible }
func (m *App) InputMode() flow.InputMode       { return m.inputMode }
func (m *App) CursorVisible() bool             { return m.cursorVisible }
func (m *App) Controller() *session.Controller { return m.controller }
func (m *App) Machine() *flow.Machine          { return m.machine }
func (m *App) Options() Options                { return m.opts }
func (m *App) PlayerName() string              { return m.opts.PlayerName }
func (m *App) Selected() int                   { return m.selected }
func (m *App) SetSelected(i int)               { m.selected = i }
func (m *App) LAN() bool                       { return m.lan }
func (m *App) SetLAN(lan bool)                 { m.lan = lan }
func (m *App) Form() *HostForm                 { return m.form }
func (m *App) SettingInput() *textinput.Model  { return &m.settingInput }
func (m *App) Editing() bool                   { return m.editing }
func (m *App) Spinner() spinner.Model          { return m.spinner }
func (m *App) Destination() string             { return m.destination }
func (m *App) Listening() bool                 { return m.listening }
func (m *App) ConnectURL() string              { return m.connectURL }
func (m *App) Width() int                      { return m.width }
func (m *App) Height() int                     { return m.height }

// Latency 当前大厅延迟（毫秒），未知时为 -1
func (m *App) Latency() int64 {
	if m.opts.Latency == nil {
		return -1
	}
	return m.opts.Latency()
}

// SetEditing 进入或退出会话设置编辑
func (m *App) SetEditing(on bool) {
	m.editing = on
	if on {
		m.settingInput.SetValue("")
		m.pending = append(m.pending, m.settingInput.Focus())
		return
	}
	m.settingInput.Blur()
}

func (m *App) SetNotification(notifyType NotificationType, message string, temporary bool) tea.Cmd {
	m.notifications[notifyType] = &SystemNotification{
		Message:   message,
		Type:      notifyType,
		Temporary: temporary,
	}
	if !temporary {
		return nil
	}
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return ClearSystemNotificationMsg{}
	})
}

func (m *App) ClearNotification(notifyType NotificationType) {
	delete(m.notifications, notifyType)
}

func (m *App) GetCurrentNotification() *SystemNotification {
	for _, t := range []NotificationType{NotifyDisconnected, NotifyError, NotifySuccess} {
		if n, ok := m.notifications[t]; ok {
			return n
		}
	}
	return nil
}
