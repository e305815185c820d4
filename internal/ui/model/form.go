package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/netsession/internal/session"
)

// 主机表单字段
const (
	FieldServerName = iota
	FieldMaxPlayers
	FieldMap
	fieldCount
)

// 允许的玩家数范围
const (
	MinPlayers = 2
	MaxPlayers = 64
)

// HostForm 创建会话表单
type HostForm struct {
	inputs []textinput.Model
	focus  int
	active bool
}

// NewHostForm 创建表单
func NewHostForm(serverName string, maxPlayers int) *HostForm {
	f := &HostForm{inputs: make([]textinput.Model, fieldCount)}

	name := textinput.New()
	name.Placeholder = "服务器名称"
	name.CharLimit = 32
	name.Width = 32
	name.SetValue(serverName)
	f.inputs[FieldServerName] = name

	players := textinput.New()
	players.Placeholder = fmt.Sprintf("%d-%d", MinPlayers, MaxPlayers)
	players.CharLimit = 2
	players.Width = 6
	players.SetValue(strconv.Itoa(maxPlayers))
	f.inputs[FieldMaxPlayers] = players

	mapName := textinput.New()
	mapName.Placeholder = "留空使用默认地图"
	mapName.CharLimit = 32
	mapName.Width = 32
	f.inputs[FieldMap] = mapName

	return f
}

// Inputs 表单输入框
func (f *HostForm) Inputs() []textinput.Model { return f.inputs }

// Focused 当前焦点字段
func (f *HostForm) Focused() int { return f.focus }

// Activate 显示或隐藏输入光标
func (f *HostForm) Activate(on bool) tea.Cmd {
	f.active = on
	return f.refocus()
}

// Next 焦点移到下一个字段
func (f *HostForm) Next() tea.Cmd {
	f.focus = (f.focus + 1) % fieldCount
	return f.refocus()
}

// Prev 焦点移到上一个字段
func (f *HostForm) Prev() tea.Cmd {
	f.focus = (f.focus + fieldCount - 1) % fieldCount
	return f.refocus()
}

func (f *HostForm) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if f.active && i == f.focus {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

// Update 把按键交给当前焦点字段
func (f *HostForm) Update(msg tea.Msg) tea.Cmd {
	if !f.active {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// Submission 表单提交结果
type Submission struct {
	MaxPlayers int
	Settings   []session.Setting
}

// Submit 校验并生成创建会话的参数
func (f *HostForm) Submit() (Submission, error) {
	name := strings.TrimSpace(f.inputs[FieldServerName].Value())
	if name == "" {
		return Submission{}, errors.New("服务器名称不能为空")
	}

	players, err := strconv.Atoi(strings.TrimSpace(f.inputs[FieldMaxPlayers].Value()))
	if err != nil || players < MinPlayers || players > MaxPlayers {
		return Submission{}, fmt.Errorf("玩家数需在 %d-%d 之间", MinPlayers, MaxPlayers)
	}

	settings := []session.Setting{{Key: session.SettingServerName, Value: name}}
	if mapName := strings.TrimSpace(f.inputs[FieldMap].Value()); mapName != "" {
		settings = append(settings, session.Setting{Key: session.SettingMapName, Value: mapName})
	}
	return Submission{MaxPlayers: players, Settings: settings}, nil
}
