package flow

import "log"

// ResourceClass 界面资源的类别（由宿主解释）
type ResourceClass string

// Resource 宿主创建的界面资源句柄
type Resource any

// ResourceClasses 五个界面状态各自使用的资源类别
type ResourceClasses map[GameState]ResourceClass

// UIHost 界面宿主
type UIHost interface {
	CreateResource(owner string, class ResourceClass) Resource
	Show(r Resource)
	Hide(r Resource)
}

// InputBinder 输入焦点宿主
type InputBinder interface {
	SetInputMode(mode InputMode, showCursor bool)
}

// Machine 状态机：任意状态可以切换到任意状态，切换到当前状态是空操作
type Machine struct {
	ui      UIHost
	input   InputBinder
	classes ResourceClasses
	owner   string

	current  GameState
	resource Resource

	mode       InputMode
	showCursor bool

	listeners []func(Transition)
}

// NewMachine 创建状态机，初始状态为 None
func NewMachine(ui UIHost, input InputBinder, classes ResourceClasses, owner string) *Machine {
	if classes == nil {
		classes = ResourceClasses{}
	}
	return &Machine{
		ui:      ui,
		input:   input,
		classes: classes,
		owner:   owner,
		current: None,
	}
}

// Subscribe 订阅状态切换
func (m *Machine) Subscribe(fn func(Transition)) {
	m.listeners = append(m.listeners, fn)
}

// Current 当前状态
func (m *Machine) Current() GameState {
	return m.current
}

// ChangeState 切换状态，返回是否发生了切换
func (m *Machine) ChangeState(next GameState) bool {
	if next == m.current {
		return false
	}

	from := m.current
	m.leaveState()
	m.enterState(next)

	log.Printf("🧭 状态切换: %s -> %s", from, next)
	for _, fn := range m.listeners {
		fn(Transition{From: from, To: next})
	}
	return true
}

// leaveState 释放当前状态绑定的资源，并把状态置为 None
func (m *Machine) leaveState() {
	if m.current.HasScreen() && m.resource != nil {
		if m.ui != nil {
			m.ui.Hide(m.resource)
		}
		m.resource = nil
	}
	m.current = None
}

// enterState 绑定新状态的资源并应用输入模式
func (m *Machine) enterState(next GameState) {
	if next.HasScreen() {
		m.resource = m.createResource(next)
		if m.resource != nil {
			m.ui.Show(m.resource)
		}
	}

	if p, ok := InputFor(next); ok {
		m.SetInputMode(p.Mode, p.ShowCursor)
	}
	m.current = next
}

func (m *Machine) createResource(s GameState) Resource {
	if m.ui == nil {
		return nil
	}
	class, ok := m.classes[s]
	if !ok || class == "" {
		log.Printf("[WARN] no resource class configured for %s", s)
		return nil
	}
	r := m.ui.CreateResource(m.owner, class)
	if r == nil {
		log.Printf("[WARN] failed to create resource %q for %s", class, s)
	}
	return r
}

// SetInputMode 设置输入模式和鼠标指针可见性
func (m *Machine) SetInputMode(mode InputMode, showCursor bool) {
	if m.input != nil {
		m.input.SetInputMode(mode, showCursor)
	}
	m.mode = mode
	m.showCursor = showCursor
}

// InputMode 当前输入模式
func (m *Machine) InputMode() InputMode {
	return m.mode
}

// CursorVisible 鼠标指针是否可见
func (m *Machine) CursorVisible() bool {
	return m.showCursor
}

// Resource 当前状态绑定的资源（可能为 nil）
func (m *Machine) Resource() Resource {
	return m.resource
}
