package log

import (
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGologLogger(t *testing.T) {
	// Create a golog logger
	glogger := golog.New()

	// Create our GologLogger
	logger := NewGologLogger(glogger)

	assert.NotNil(t, logger)
	assert.Equal(t, LogLevelInfo, logger.GetLevel())
}

func TestGologLogger_LevelControl(t *testing.T) {
	glogger := golog.New()
	logger := NewGologLogger(glogger)

	// Test setting different levels
	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())

	logger.SetLevel(LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())

	logger.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, logger.GetLevel())
}

func TestGologLogger_Logging(t *testing.T) {
	glogger := golog.New()
	logger := NewGologLogger(glogger)

	// Set to debug level to ensure all messages are logged
	logger.SetLevel(LogLevelDebug)

	// Test logging methods - these should not panic
	logger.Debug("Debug message")
	logger.Info("Info message")
	logger.Warn("Warning message")
	logger.Error("Error message")

	// Test with formatted messages
	logger.Debug("Debug: %s", "test")
	logger.Info("Info: %d", 42)
	logger.Warn("Warn: %v", map[string]string{"key": "value"})
	logger.Error("Error: %f", 3.14)
}

func TestGologLogger_LevelFiltering(t *testing.T) {
	glogger := golog.New()
	logger := NewGologLogger(glogger)

	// Set to error level
	logger.SetLevel(LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())

	// These methods will check level but won't panic
	logger.Debug("This should be filtered")
	logger.Info("This should be filtered")
	logger.Warn("This should be filtered")
	logger.Error("This should be logged")
}

func TestGologLogger_Implementation(t *testing.T) {
	// Verify GologLogger implements Logger interface
	var _ Logger = (*GologLogger)(nil)

	glogger := golog.New()
	logger := NewGologLogger(glogger)

	assert.NotNil(t, logger)
}

func TestGologLogger_CustomGologInstance(t *testing.T) {
	// Create a custom golog with specific configuration
	glogger := golog.New()
	glogger.SetLevel("error")
	glogger.SetPrefix("[CUSTOM] ")

	logger := NewGologLogger(glogger)
	assert.NotNil(t, logger)

	// Test that our level control works independently
	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())
}

func TestGologLogger_ScopedSharesUnderlyingLoggerAndLevel(t *testing.T) {
	glogger := golog.New()
	root := NewGologLogger(glogger)
	root.SetLevel(LogLevelWarn)

	scoped := root.Scoped("src")

	require.Implements(t, (*Logger)(nil), scoped)
	gologScoped, ok := scoped.(*GologLogger)
	require.True(t, ok)

	assert.Same(t, root.logger, gologScoped.logger, "Scoped must reuse the parent's *golog.Logger rather than construct a new one")
	assert.Equal(t, LogLevelWarn, gologScoped.GetLevel(), "Scoped inherits the parent's level at creation time")

	// These should not panic, and at LogLevelWarn only Warn/Error reach golog.
	scoped.Debug("dropped frame for %s", "node-a")
	scoped.Warn("queue nearly full on %s", "node-a")
	scoped.Error("run failed on %s: %v", "node-a", assert.AnError)
}

func TestGologLogger_ScopedIsIndependentOfParentLevelChanges(t *testing.T) {
	glogger := golog.New()
	root := NewGologLogger(glogger)
	scoped := root.Scoped("node-b").(*GologLogger)

	// Changing the parent's level after scoping must not retroactively
	// change a child that already captured the old level, since node
	// tasks run concurrently and each should see a stable view.
	root.SetLevel(LogLevelError)
	assert.Equal(t, LogLevelInfo, scoped.GetLevel())
}

func TestGologLogger_NestedScopedPrefixesAccumulate(t *testing.T) {
	glogger := golog.New()
	root := NewGologLogger(glogger)

	outer := root.Scoped("graph-1").(*GologLogger)
	inner := outer.Scoped("node-x").(*GologLogger)

	assert.Equal(t, "[node-x] [graph-1] ", inner.prefix)
}

func TestScope_FallsBackToUnscopedLoggerWithoutScoper(t *testing.T) {
	prev := GetDefaultLogger()
	defer SetDefaultLogger(prev)

	SetDefaultLogger(NewDefaultLogger(LogLevelInfo))
	assert.Equal(t, GetDefaultLogger(), Scope("any-node"), "a non-Scoper default logger is returned unscoped")

	SetDefaultLogger(NewGologLogger(golog.New()))
	scoped, ok := Scope("worker-1").(*GologLogger)
	require.True(t, ok)
	assert.Equal(t, "[worker-1] ", scoped.prefix)
}