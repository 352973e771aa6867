package coffee

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Optional logger logs only if logger is set.
// LogPrefix is attached to every record as the "component" attribute. The
// logger can be replaced while other goroutines log; LogPrefix can not.
type OptionalLogger struct {
	LogPrefix string
	logger    atomic.Pointer[slog.Logger]
}

func (l *OptionalLogger) SetLogger(logger *slog.Logger) {
	l.logger.Store(logger)
}

func (l *OptionalLogger) Logger() *slog.Logger {
	return l.logger.Load()
}

func (l *OptionalLogger) Log(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args)
}

func (l *OptionalLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args)
}

func (l *OptionalLogger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args)
}

func (l *OptionalLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args)
}

func (l *OptionalLogger) log(level slog.Level, msg string, args []interface{}) {
	logger := l.logger.Load()
	if logger == nil {
		return
	}
	if l.LogPrefix != "" {
		args = append([]interface{}{"component", l.LogPrefix}, args...)
	}
	logger.Log(context.Background(), level, msg, args...)
}
