package logging

import (
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	debugEnabled = os.Getenv("DEBUG") == "true"

	mu   sync.RWMutex
	base *zap.Logger
)

// Init builds the process logger. Output goes to stderr so stdout stays free
// for MCP JSON-RPC traffic.
func Init(debug bool) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	base = l
	debugEnabled = debug
	mu.Unlock()
	return nil
}

// SetLogger replaces the process logger (tests use zap.NewNop or an observer).
func SetLogger(l *zap.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

// L returns the process logger, falling back to a no-op logger before Init.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		return zap.NewNop()
	}
	return base
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

func sugar(subsystem string) *zap.SugaredLogger {
	return L().With(zap.String("subsystem", subsystem)).Sugar()
}

// Info logs an informational message (always shown)
func Info(subsystem, format string, args ...any) {
	sugar(subsystem).Infof(format, args...)
}

// Warn logs a recoverable problem
func Warn(subsystem, format string, args ...any) {
	sugar(subsystem).Warnf(format, args...)
}

// Error logs a failed operation
func Error(subsystem, format string, args ...any) {
	sugar(subsystem).Errorf(format, args...)
}

// Debug logs a debug message (only shown if DEBUG=true)
func Debug(subsystem, format string, args ...any) {
	mu.RLock()
	enabled := debugEnabled
	mu.RUnlock()
	if enabled {
		sugar(subsystem).Debugf(format, args...)
	}
}

// Truncate cuts s to maxLen runes and adds an ellipsis
func Truncate(s string, maxLen int) string {
	// Replace newlines with spaces for one-line logs
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
