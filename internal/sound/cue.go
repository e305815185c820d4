package sound

import "github.com/palemoky/netsession/internal/flow"

// 提示音名称，同名的 mp3/wav 文件会覆盖内置音
const (
	CueMenu     = "menu"
	CueLoading  = "loading"
	CueTravel   = "travel"
	CueInGame   = "ingame"
	CueNegative = "negative"
)

// 内置提示音频率（Hz）
var cueTones = map[string]float64{
	CueMenu:     660,
	CueLoading:  440,
	CueTravel:   880,
	CueInGame:   990,
	CueNegative: 220,
}

// Player 播放提示音
type Player interface {
	Play(name string)
}

// CueFor 进入某状态时的提示音
func CueFor(state flow.GameState) (string, bool) {
	switch state {
	case flow.MainMenu, flow.MultiplayerHome, flow.MultiplayerJoin, flow.MultiplayerHost:
		return CueMenu, true
	case flow.LoadingScreen:
		return CueLoading, true
	case flow.Travelling:
		return CueTravel, true
	case flow.MultiplayerInGame:
		return CueInGame, true
	default:
		return "", false
	}
}

// Bind 在状态切换时播放提示音
func Bind(m *flow.Machine, p Player) {
	m.Subscribe(func(tr flow.Transition) {
		if name, ok := CueFor(tr.To); ok {
			p.Play(name)
		}
	})
}
