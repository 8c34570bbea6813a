package dyte

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// LogLevel is a dyteshim log level.
type LogLevel int32

// Log level constants matching the shim's DYTESHIM_LOG_* values.
const (
	LogError LogLevel = 0
	LogWarn  LogLevel = 1
	LogInfo  LogLevel = 2
	LogDebug LogLevel = 3
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch {
	case l <= LogError:
		return "error"
	case l == LogWarn:
		return "warning"
	case l == LogInfo:
		return "info"
	default:
		return "debug"
	}
}

// Slog maps the level to its slog equivalent.
func (l LogLevel) Slog() slog.Level {
	switch {
	case l <= LogError:
		return slog.LevelError
	case l == LogWarn:
		return slog.LevelWarn
	case l == LogInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// nativeLevelFor returns the most verbose shim level that l still lets through.
func nativeLevelFor(l slog.Level) LogLevel {
	switch {
	case l <= slog.LevelDebug:
		return LogDebug
	case l <= slog.LevelInfo:
		return LogInfo
	case l <= slog.LevelWarn:
		return LogWarn
	default:
		return LogError
	}
}

// LogCallback is called for each message logged by the native shim.
type LogCallback func(level LogLevel, message string)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used by the package. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default().With("component", "dyte")
}

// SetNativeLogLevel sets the most verbose level the native shim reports.
// This requires the native libraries to be loaded.
func SetNativeLogLevel(level LogLevel) error {
	return setNativeLogLevel(int32(level))
}

// SetNativeLogCallback sets a custom handler for native shim messages.
// Pass nil to restore the shim's stderr output.
func SetNativeLogCallback(cb LogCallback) error {
	if cb == nil {
		return setNativeLogCallback(nil)
	}
	return setNativeLogCallback(func(level int32, msg string) {
		cb(LogLevel(level), msg)
	})
}

// ForwardNativeLogs routes native shim messages into l (the package logger
// when nil).
func ForwardNativeLogs(l *slog.Logger) error {
	return SetNativeLogCallback(nativeLogForwarder(l))
}

func nativeLogForwarder(l *slog.Logger) LogCallback {
	return func(level LogLevel, msg string) {
		lg := l
		if lg == nil {
			lg = logger()
		}
		lg.Log(context.Background(), level.Slog(), msg, "source", "native")
	}
}

const redactedPlaceholder = "[redacted]"

// redacted marks an attribute whose value must not reach the logs.
func redacted(key string) slog.Attr {
	return slog.String(key, redactedPlaceholder)
}
