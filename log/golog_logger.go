package log

import (
	"github.com/kataras/golog"
)

// GologLogger adapts a github.com/kataras/golog logger to the Logger
// interface. Multiple GologLoggers (one per node, via Scoped) may share
// the same underlying *golog.Logger. Each wrapper checks its own level
// before forwarding a message; SetLevel also sets the shared
// *golog.Logger's level, which then filters the output of every wrapper
// sharing it.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
	prefix string // prepended to every format string; empty for the root logger
}

var (
	_ Logger = (*GologLogger)(nil)
	_ Scoper = (*GologLogger)(nil)
)

// NewGologLogger creates a new logger using an existing golog.Logger
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{
		logger: logger,
		level:  LogLevelInfo, // default level
	}
}

// Scoped returns a logger sharing the same underlying golog.Logger and
// level, whose every message is tagged with name. Two Scoped loggers on
// the same parent are independent: each formats its own prefix rather
// than mutating the shared *golog.Logger's global prefix, which would
// otherwise race across concurrently running node tasks.
func (l *GologLogger) Scoped(name string) Logger {
	return &GologLogger{
		logger: l.logger,
		level:  l.level,
		prefix: "[" + name + "] " + l.prefix,
	}
}

func (l *GologLogger) tag(format string) string {
	if l.prefix == "" {
		return format
	}
	return l.prefix + format
}

// Debug logs debug messages
func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LogLevelDebug {
		args := append([]any{l.tag(format)}, v...)
		l.logger.Debug(args...)
	}
}

// Info logs informational messages
func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LogLevelInfo {
		args := append([]any{l.tag(format)}, v...)
		l.logger.Info(args...)
	}
}

// Warn logs warning messages
func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LogLevelWarn {
		args := append([]any{l.tag(format)}, v...)
		l.logger.Warn(args...)
	}
}

// Error logs error messages
func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LogLevelError {
		args := append([]any{l.tag(format)}, v...)
		l.logger.Error(args...)
	}
}

// SetLevel sets the log level of this wrapper and of the underlying
// *golog.Logger. Scoped children created before this call keep their own
// copy of the level (their GetLevel is unchanged), but their output is
// also filtered by the shared *golog.Logger's new level.
func (l *GologLogger) SetLevel(level LogLevel) {
	l.level = level

	// Convert to golog level string
	gologLevel := "info"
	switch level {
	case LogLevelDebug:
		gologLevel = "debug"
	case LogLevelInfo:
		gologLevel = "info"
	case LogLevelWarn:
		gologLevel = "warn"
	case LogLevelError:
		gologLevel = "error"
	case LogLevelNone:
		gologLevel = "disable"
	}

	l.logger.SetLevel(gologLevel)
}

// GetLevel returns the current log level
func (l *GologLogger) GetLevel() LogLevel {
	return l.level
}