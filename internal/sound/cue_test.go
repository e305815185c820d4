package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/netsession/internal/flow"
)

type recordingPlayer struct {
	played []string
}

func (p *recordingPlayer) Play(name string) {
	p.played = append(p.played, name)
}

func TestCueFor(t *testing.T) {
	tests := []struct {
		state flow.GameState
		cue   string
		ok    bool
	}{
		{flow.None, "", false},
		{flow.Startup, "", false},
		{flow.LoadingScreen, CueLoading, true},
		{flow.MainMenu, CueMenu, true},
		{flow.MultiplayerJoin, CueMenu, true},
		{flow.Travelling, CueTravel, true},
		{flow.MultiplayerInGame, CueInGame, true},
	}
	for _, tt := range tests {
		cue, ok := CueFor(tt.state)
		assert.Equal(t, tt.ok, ok, tt.state.String())
		assert.Equal(t, tt.cue, cue, tt.state.String())
	}
}

func TestBind_PlaysOnTransition(t *testing.T) {
	m := flow.NewMachine(nil, nil, nil, "test")
	p := &recordingPlayer{}
	Bind(m, p)

	m.ChangeState(flow.MainMenu)
	m.ChangeState(flow.MainMenu) // 相同状态不触发
	m.ChangeState(flow.Startup)
	m.ChangeState(flow.Travelling)

	assert.Equal(t, []string{CueMenu, CueTravel}, p.played)
}

func TestEveryCueHasTone(t *testing.T) {
	for _, s := range []flow.GameState{flow.LoadingScreen, flow.MainMenu, flow.Travelling, flow.MultiplayerInGame} {
		cue, _ := CueFor(s)
		assert.Contains(t, cueTones, cue)
	}
}
