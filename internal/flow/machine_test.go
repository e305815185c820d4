package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/testutil"
)

var testClasses = flow.ResourceClasses{
	flow.LoadingScreen:   "loading",
	flow.MainMenu:        "main_menu",
	flow.MultiplayerHome: "mp_home",
	flow.MultiplayerJoin: "mp_join",
	flow.MultiplayerHost: "mp_host",
}

func allStates() []flow.GameState {
	return []flow.GameState{
		flow.None, flow.LoadingScreen, flow.Startup, flow.MainMenu,
		flow.MultiplayerHome, flow.MultiplayerJoin, flow.MultiplayerHost,
		flow.MultiplayerInGame, flow.Travelling,
	}
}

func TestMachine_InitialState(t *testing.T) {
	m := flow.NewMachine(nil, nil, nil, "player")
	assert.Equal(t, flow.None, m.Current())
	assert.Nil(t, m.Resource())
}

func TestMachine_ChangeStateIdempotent(t *testing.T) {
	ui := new(testutil.MockUIHost)
	input := new(testutil.MockInputBinder)
	ui.On("CreateResource", "player", flow.ResourceClass("main_menu")).Return("menu-widget").Once()
	ui.On("Show", "menu-widget").Once()
	input.On("SetInputMode", flow.UIOnly, true).Once()

	m := flow.NewMachine(ui, input, testClasses, "player")
	var transitions []flow.Transition
	m.Subscribe(func(tr flow.Transition) { transitions = append(transitions, tr) })

	assert.True(t, m.ChangeState(flow.MainMenu))
	assert.False(t, m.ChangeState(flow.MainMenu))

	assert.Equal(t, flow.MainMenu, m.Current())
	assert.Equal(t, "menu-widget", m.Resource())
	assert.Len(t, transitions, 1)
	ui.AssertExpectations(t)
	input.AssertExpectations(t)
}

func TestMachine_LeaveHidesScreen(t *testing.T) {
	ui := new(testutil.MockUIHost)
	input := new(testutil.MockInputBinder)
	ui.On("CreateResource", "player", flow.ResourceClass("mp_home")).Return("home").Once()
	ui.On("Show", "home").Once()
	ui.On("Hide", "home").Once()
	input.On("SetInputMode", mock.Anything, mock.Anything)

	m := flow.NewMachine(ui, input, testClasses, "player")
	require.True(t, m.ChangeState(flow.MultiplayerHome))
	require.True(t, m.ChangeState(flow.MultiplayerInGame))

	assert.Nil(t, m.Resource())
	assert.Equal(t, flow.GameOnly, m.InputMode())
	assert.False(t, m.CursorVisible())
	input.AssertCalled(t, "SetInputMode", flow.GameOnly, false)
	ui.AssertExpectations(t)
}

func TestMachine_AnyToAnyTransition(t *testing.T) {
	for _, from := range allStates() {
		for _, to := range allStates() {
			m := flow.NewMachine(nil, nil, testClasses, "player")
			m.ChangeState(from)
			changed := m.ChangeState(to)

			assert.Equal(t, to, m.Current(), "%s -> %s", from, to)
			assert.Equal(t, from != to, changed, "%s -> %s", from, to)
		}
	}
}

func TestMachine_TransitionOrder(t *testing.T) {
	ui := new(testutil.MockUIHost)
	var calls []string
	ui.On("CreateResource", "player", flow.ResourceClass("mp_home")).Return("mp_home")
	ui.On("CreateResource", "player", flow.ResourceClass("mp_join")).Return("mp_join")
	ui.On("Show", mock.Anything).Run(func(args mock.Arguments) {
		calls = append(calls, "show:"+args.String(0))
	})
	ui.On("Hide", mock.Anything).Run(func(args mock.Arguments) {
		calls = append(calls, "hide:"+args.String(0))
	})

	m := flow.NewMachine(ui, nil, testClasses, "player")
	m.ChangeState(flow.MultiplayerHome)
	m.ChangeState(flow.MultiplayerJoin)

	// 先隐藏旧界面，再显示新界面
	assert.Equal(t, []string{"show:mp_home", "hide:mp_home", "show:mp_join"}, calls)
}

func TestMachine_MissingResourceStillAppliesInput(t *testing.T) {
	ui := new(testutil.MockUIHost)
	input := new(testutil.MockInputBinder)
	ui.On("CreateResource", "player", flow.ResourceClass("loading")).Return(nil).Once()
	input.On("SetInputMode", flow.UIOnly, true).Once()

	m := flow.NewMachine(ui, input, testClasses, "player")
	assert.True(t, m.ChangeState(flow.LoadingScreen))

	assert.Equal(t, flow.LoadingScreen, m.Current())
	assert.Nil(t, m.Resource())
	ui.AssertNotCalled(t, "Show", mock.Anything)
	input.AssertExpectations(t)
}

func TestMachine_StatesWithoutScreenSkipUI(t *testing.T) {
	ui := new(testutil.MockUIHost)
	m := flow.NewMachine(ui, nil, testClasses, "player")

	m.ChangeState(flow.Startup)
	m.ChangeState(flow.Travelling)
	m.ChangeState(flow.MultiplayerInGame)

	ui.AssertNotCalled(t, "CreateResource", mock.Anything, mock.Anything)
	ui.AssertNotCalled(t, "Hide", mock.Anything)
}

func TestMachine_StartupKeepsInputMode(t *testing.T) {
	m := flow.NewMachine(nil, nil, nil, "player")
	m.ChangeState(flow.MultiplayerInGame)
	m.ChangeState(flow.Startup)

	assert.Equal(t, flow.GameOnly, m.InputMode())
}

func TestInputFor(t *testing.T) {
	tests := []struct {
		state  flow.GameState
		mode   flow.InputMode
		cursor bool
		ok     bool
	}{
		{flow.None, flow.UIOnly, false, false},
		{flow.Startup, flow.UIOnly, false, false},
		{flow.LoadingScreen, flow.UIOnly, true, true},
		{flow.MainMenu, flow.UIOnly, true, true},
		{flow.MultiplayerHome, flow.UIOnly, true, true},
		{flow.MultiplayerJoin, flow.UIOnly, true, true},
		{flow.MultiplayerHost, flow.UIOnly, true, true},
		{flow.MultiplayerInGame, flow.GameOnly, false, true},
		{flow.Travelling, flow.UIOnly, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			p, ok := flow.InputFor(tt.state)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.mode, p.Mode)
				assert.Equal(t, tt.cursor, p.ShowCursor)
			}
		})
	}
}

func TestGameState_Screens(t *testing.T) {
	for _, s := range flow.ScreenStates() {
		assert.True(t, s.HasScreen(), s.String())
	}
	assert.False(t, flow.MultiplayerInGame.HasScreen())
	assert.False(t, flow.Travelling.HasScreen())
	assert.Equal(t, "Unknown", flow.GameState(99).String())
}
