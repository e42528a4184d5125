package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
	envTest  = "test"
)

// LevelCritical sits above slog.LevelError. It is reserved for failures that
// leave the database in an unknown state, such as a failed rollback.
const LevelCritical = slog.Level(12)

type Logger struct {
	*slog.Logger
}

func New(env string) *Logger {
	return NewWithLevel(env, "")
}

// NewWithLevel builds a logger for env. A non-empty level overrides the
// environment default.
func NewWithLevel(env string, level string) *Logger {
	var handler slog.Handler

	switch env {
	case envLocal, envDev:
		handler = slog.NewTextHandler(os.Stdout, handlerOptions(parseLevel(level, slog.LevelDebug)))
	case envProd:
		handler = slog.NewJSONHandler(os.Stdout, handlerOptions(parseLevel(level, slog.LevelInfo)))
	case envTest:
		handler = slog.NewTextHandler(io.Discard, handlerOptions(slog.LevelDebug))
	default:
		handler = slog.NewJSONHandler(os.Stdout, handlerOptions(parseLevel(level, slog.LevelInfo)))
	}

	return &Logger{Logger: slog.New(handler)}
}

func (l *Logger) Critical(msg string, args ...any) {
	l.Log(context.Background(), LevelCritical, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// StdLogger exposes the logger as a *log.Logger for libraries that only
// accept Printf-style writers.
func (l *Logger) StdLogger(level slog.Level) *log.Logger {
	return slog.NewLogLogger(l.Handler(), level)
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
					a.Value = slog.StringValue("CRITICAL")
				}
			}
			return a
		},
	}
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return fallback
	}
}
