package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/netsession/internal/session"
)

func TestHostForm_Submit(t *testing.T) {
	t.Parallel()

	sub, err := NewHostForm("Alpha", 6).Submit()
	require.NoError(t, err)
	assert.Equal(t, 6, sub.MaxPlayers)
	assert.Equal(t, []session.Setting{{Key: session.SettingServerName, Value: "Alpha"}}, sub.Settings)
}

func TestHostForm_SubmitWithMap(t *testing.T) {
	t.Parallel()

	f := NewHostForm("Alpha", 4)
	f.inputs[FieldMap].SetValue(" Map_Arena ")
	sub, err := f.Submit()
	require.NoError(t, err)
	assert.Contains(t, sub.Settings, session.Setting{Key: session.SettingMapName, Value: "Map_Arena"})
}

func TestHostForm_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewHostForm("  ", 4).Submit()
	assert.Error(t, err)

	_, err = NewHostForm("Alpha", 1).Submit()
	assert.Error(t, err)

	f := NewHostForm("Alpha", 4)
	f.inputs[FieldMaxPlayers].SetValue("x")
	_, err = f.Submit()
	assert.Error(t, err)
}

func TestHostForm_FocusCycles(t *testing.T) {
	t.Parallel()

	f := NewHostForm("Alpha", 4)
	f.Activate(true)
	assert.True(t, f.inputs[FieldServerName].Focused())

	f.Next()
	assert.Equal(t, FieldMaxPlayers, f.Focused())
	assert.True(t, f.inputs[FieldMaxPlayers].Focused())
	assert.False(t, f.inputs[FieldServerName].Focused())

	f.Prev()
	f.Prev()
	assert.Equal(t, FieldMap, f.Focused())

	f.Activate(false)
	for _, in := range f.Inputs() {
		assert.False(t, in.Focused())
	}
}
