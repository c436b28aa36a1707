package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Logger provides a unified logging interface for the assistant.
// It gracefully handles both a configured zap backend and plain stdout.

// LogLevel represents log severity levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	// CurrentLevel is the current logging level (default: Info)
	CurrentLevel = LevelInfo

	// UseZap controls whether to log through the zap backend.
	// Set to false in tests to use fmt.Printf
	UseZap = true

	sugar *zap.SugaredLogger
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	if l, err := cfg.Build(zap.AddCallerSkip(2)); err == nil {
		sugar = l.Sugar()
	}
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	if CurrentLevel > LevelDebug {
		return
	}
	logf(LevelDebug, format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	if CurrentLevel > LevelInfo {
		return
	}
	logf(LevelInfo, format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	if CurrentLevel > LevelWarn {
		return
	}
	logf(LevelWarn, format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}

// logf is the internal logging function
func logf(level LogLevel, format string, args ...interface{}) {
	if UseZap && sugar != nil {
		switch level {
		case LevelDebug:
			sugar.Debugf(format, args...)
		case LevelInfo:
			sugar.Infof(format, args...)
		case LevelWarn:
			sugar.Warnf(format, args...)
		case LevelError:
			sugar.Errorf(format, args...)
		}
		return
	}
	fallbackLog(level, format, args...)
}

// fallbackLog uses fmt.Printf when the zap backend is not available
func fallbackLog(level LogLevel, format string, args ...interface{}) {
	prefix := levelPrefix(level)
	fmt.Printf(prefix+format+"\n", args...)
}

// levelPrefix returns the prefix for each log level
func levelPrefix(level LogLevel) string {
	switch level {
	case LevelDebug:
		return "[DEBUG] "
	case LevelInfo:
		return "[INFO] "
	case LevelWarn:
		return "[WARN] "
	case LevelError:
		return "[ERROR] "
	default:
		return "[LOG] "
	}
}

// SetLevel sets the minimum log level
func SetLevel(level LogLevel) {
	CurrentLevel = level
}

// ParseLevel maps a config string to a LogLevel; unknown values keep Info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// DisableZap disables the zap backend (useful for tests)
func DisableZap() {
	UseZap = false
}

// EnableZap enables the zap backend (default)
func EnableZap() {
	UseZap = true
}

// Sync flushes buffered log entries; call on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

// ContextLogger carries fixed key/value pairs into every entry.
type ContextLogger struct {
	sugar *zap.SugaredLogger
}

// With creates a logger scoped with key/value context, e.g.
// logger.With("session_id", id).
func With(kv ...interface{}) *ContextLogger {
	if sugar == nil {
		return &ContextLogger{}
	}
	return &ContextLogger{sugar: sugar.With(kv...)}
}

// Debugf logs with context
func (c *ContextLogger) Debugf(format string, args ...interface{}) {
	if CurrentLevel > LevelDebug {
		return
	}
	if !UseZap || c.sugar == nil {
		fallbackLog(LevelDebug, format, args...)
		return
	}
	c.sugar.Debugf(format, args...)
}

// Infof logs with context
func (c *ContextLogger) Infof(format string, args ...interface{}) {
	if CurrentLevel > LevelInfo {
		return
	}
	if !UseZap || c.sugar == nil {
		fallbackLog(LevelInfo, format, args...)
		return
	}
	c.sugar.Infof(format, args...)
}

// Warnf logs with context
func (c *ContextLogger) Warnf(format string, args ...interface{}) {
	if CurrentLevel > LevelWarn {
		return
	}
	if !UseZap || c.sugar == nil {
		fallbackLog(LevelWarn, format, args...)
		return
	}
	c.sugar.Warnf(format, args...)
}

// Errorf logs with context
func (c *ContextLogger) Errorf(format string, args ...interface{}) {
	if !UseZap || c.sugar == nil {
		fallbackLog(LevelError, format, args...)
		return
	}
	c.sugar.Errorf(format, args...)
}
