package flow

// InputPolicy 进入某状态时应用的输入模式
type InputPolicy struct {
	Mode       InputMode
	ShowCursor bool
}

var inputTable = map[GameState]InputPolicy{
	LoadingScreen:     {Mode: UIOnly, ShowCursor: true},
	MainMenu:          {Mode: UIOnly, ShowCursor: true},
	MultiplayerHome:   {Mode: UIOnly, ShowCursor: true},
	MultiplayerJoin:   {Mode: UIOnly, ShowCursor: true},
	MultiplayerHost:   {Mode: UIOnly, ShowCursor: true},
	MultiplayerInGame: {Mode: GameOnly, ShowCursor: false},
	Travelling:        {Mode: UIOnly, ShowCursor: false},
}

// InputFor 状态对应的输入模式；None 和 Startup 不改变输入模式
func InputFor(s GameState) (InputPolicy, bool) {
	p, ok := inputTable[s]
	return p, ok
}
