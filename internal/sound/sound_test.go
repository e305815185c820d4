//go:build !ci

package sound

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTone 写入一段 100ms 的单声道 wav
func writeTone(t *testing.T, path string, rate beep.SampleRate) {
	t.Helper()

	tone, err := generators.SineTone(rate, 330)
	require.NoError(t, err)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(rate.N(100*time.Millisecond), tone), format))
}

func TestLoadSoundFiles_OverridesBuiltinCue(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, CueNegative+".wav"), 22050)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a sound"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, CueMenu+".wav"), []byte("broken"), 0o600))

	sm := NewSoundManager(dir)
	for name, freq := range cueTones {
		require.NoError(t, sm.synthesize(name, freq))
	}
	builtin := sm.buffers[CueNegative]
	menu := sm.buffers[CueMenu]

	require.NoError(t, sm.loadSoundFiles(dir))

	loaded := sm.buffers[CueNegative]
	require.NotNil(t, loaded)
	assert.NotSame(t, builtin, loaded)
	// 22050Hz 重采样到 44100Hz
	assert.InDelta(t, sampleRate.N(100*time.Millisecond), loaded.Len(), 100)

	// 损坏的文件保留内置音，其他文件被忽略
	assert.Same(t, menu, sm.buffers[CueMenu])
	assert.NotContains(t, sm.buffers, "README")
}

func TestLoadSoundFiles_MissingDir(t *testing.T) {
	sm := NewSoundManager("")
	assert.NoError(t, sm.loadSoundFiles(filepath.Join(t.TempDir(), "missing")))
	assert.Empty(t, sm.buffers)
}

func TestPlay_DisabledIsNoop(t *testing.T) {
	sm := NewSoundManager("")
	require.NoError(t, sm.synthesize(CueNegative, cueTones[CueNegative]))

	// 未初始化扬声器时不播放
	assert.NotPanics(t, func() { sm.Play(CueNegative) })
}
