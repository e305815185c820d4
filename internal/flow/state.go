// Package flow drives the menu/game state machine and the input-focus policy
// bound to each state.
package flow

// GameState 游戏/界面状态
type GameState int

const (
	None GameState = iota
	LoadingScreen
	Startup
	MainMenu
	MultiplayerHome
	MultiplayerJoin
	MultiplayerHost
	MultiplayerInGame
	Travelling
)

var stateNames = map[GameState]string{
	None:              "None",
	LoadingScreen:     "Loading",
	Startup:           "Startup",
	MainMenu:          "Main Menu",
	MultiplayerHome:   "Multiplayer Home",
	MultiplayerJoin:   "Multiplayer Join",
	MultiplayerHost:   "Multiplayer Host",
	MultiplayerInGame: "Multiplayer In Game",
	Travelling:        "Travelling",
}

func (s GameState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// HasScreen 该状态是否绑定一个界面资源
func (s GameState) HasScreen() bool {
	switch s {
	case LoadingScreen, MainMenu, MultiplayerHome, MultiplayerJoin, MultiplayerHost:
		return true
	default:
		return false
	}
}

// ScreenStates 绑定界面资源的五个状态
func ScreenStates() []GameState {
	return []GameState{LoadingScreen, MainMenu, MultiplayerHome, MultiplayerJoin, MultiplayerHost}
}

// InputMode 输入焦点模式
type InputMode int

const (
	UIOnly InputMode = iota
	UIAndGame
	GameOnly
)

func (m InputMode) String() string {
	switch m {
	case UIOnly:
		return "UI Only"
	case UIAndGame:
		return "UI And Game"
	case GameOnly:
		return "Game Only"
	default:
		return "Unknown"
	}
}

// Transition 一次状态切换
type Transition struct {
	From GameState
	To   GameState
}
