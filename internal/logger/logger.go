// Package logger writes the client's debug log to a rotating file.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"sync/atomic"
	"time"
)

const (
	logFileName = "debug.log"
	maxLogSize  = 10 * 1024 * 1024
	maxBackups  = 3
)

// Level 日志级别
type Level int32

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel 解析 info/warn/error，无法识别时返回 LevelInfo
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	debugLog *os.File
	logPath  string
	minLevel atomic.Int32
)

// Init initializes the debug logger under ~/.netsession
func Init() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitDir(filepath.Join(homeDir, ".netsession"))
}

// InitDir initializes the debug logger in logDir
func InitDir(logDir string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		rotate(logDir, path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	Close()
	debugLog, logPath = f, path

	log.SetOutput(debugLog)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	LogInfo("Logger initialized, log file: %s", logPath)
	return nil
}

// rotate 把过大的日志改名备份，只保留最近 maxBackups 份
func rotate(logDir, path string) {
	backup := filepath.Join(logDir, fmt.Sprintf("%s.%d", logFileName, time.Now().UnixNano()))
	if err := os.Rename(path, backup); err != nil {
		return
	}

	backups, err := filepath.Glob(filepath.Join(logDir, logFileName+".*"))
	if err != nil || len(backups) <= maxBackups {
		return
	}
	slices.Sort(backups)
	for _, old := range backups[:len(backups)-maxBackups] {
		_ = os.Remove(old)
	}
}

// SetLevel 低于 level 的日志被丢弃
func SetLevel(level Level) {
	minLevel.Store(int32(level))
}

// Close closes the debug log file
func Close() {
	if debugLog != nil {
		_ = debugLog.Close()
		debugLog = nil
	}
}

func logf(level Level, format string, args ...interface{}) {
	if level < Level(minLevel.Load()) {
		return
	}
	_ = log.Output(3, fmt.Sprintf("["+level.String()+"] "+format, args...))
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}

// LogPanic logs a panic with stack trace
func LogPanic(r interface{}) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	return logPath
}
