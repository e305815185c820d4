package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, InitDir(dir))
	t.Cleanup(func() {
		Close()
		SetLevel(LevelInfo)
		log.SetOutput(os.Stderr)
	})
}

func readLog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)
	return string(data)
}

func TestInitDir_WritesLevels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	initTemp(t, dir)

	assert.Equal(t, filepath.Join(dir, "debug.log"), GetLogPath())

	LogInfo("hello %s", "info")
	LogWarn("careful %d", 1)
	LogError("boom")

	out := readLog(t)
	assert.Contains(t, out, "[INFO] Logger initialized")
	assert.Contains(t, out, "[INFO] hello info")
	assert.Contains(t, out, "[WARN] careful 1")
	assert.Contains(t, out, "[ERROR] boom")
	assert.Contains(t, out, "logger_test.go", "调用位置应指向调用方")
}

func TestSetLevel_FiltersLowerLevels(t *testing.T) {
	initTemp(t, t.TempDir())
	SetLevel(LevelWarn)

	LogInfo("quiet")
	LogWarn("loud")

	out := readLog(t)
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "[WARN] loud")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"":        LevelInfo,
		"info":    LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		" error ": LevelError,
		"debug":   LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestInitDir_RotatesLargeFile(t *testing.T) {
	dir := t.TempDir()
	big := strings.Repeat("x", maxLogSize+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte(big), 0o644))

	initTemp(t, dir)

	matches, err := filepath.Glob(filepath.Join(dir, "debug.log.*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	info, err := os.Stat(GetLogPath())
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(maxLogSize))
}

func TestInitDir_PrunesOldBackups(t *testing.T) {
	dir := t.TempDir()
	for i := range maxBackups + 2 {
		name := filepath.Join(dir, fmt.Sprintf("debug.log.%d", 1000+i))
		require.NoError(t, os.WriteFile(name, []byte("old"), 0o644))
	}
	big := strings.Repeat("x", maxLogSize+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte(big), 0o644))

	initTemp(t, dir)

	matches, err := filepath.Glob(filepath.Join(dir, "debug.log.*"))
	require.NoError(t, err)
	assert.Len(t, matches, maxBackups)
	assert.NotContains(t, matches, filepath.Join(dir, "debug.log.1000"))
}
