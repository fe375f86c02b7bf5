// Package log provides structured logging for stringcoach. It wraps slog
// with env-driven defaults so binaries stay flag-free for logging concerns.
package log

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Init initializes the global logger. Valid levels: "debug", "info",
// "warn", "error". JSON output when SGC_LOG_FORMAT=json, text otherwise.
func Init(level string) {
	once.Do(func() {
		var lvl slog.Level
		switch level {
		case "debug":
			lvl = slog.LevelDebug
		case "warn":
			lvl = slog.LevelWarn
		case "error":
			lvl = slog.LevelError
		default:
			lvl = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: lvl}
		if os.Getenv("SGC_LOG_FORMAT") == "json" {
			logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
		} else {
			logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		}
		slog.SetDefault(logger)
	})
}

// L returns the global logger, initializing it at info level if needed.
func L() *slog.Logger {
	if logger == nil {
		Init(os.Getenv("SGC_LOG_LEVEL"))
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { L().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { L().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { L().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { L().Error(msg, args...) }
