// Package log provides a simple, leveled logging interface for streamdag.
//
// This package implements a lightweight logging system with support for
// different log levels and customizable output destinations. It's used
// throughout the engine for plugin discovery, graph validation, and
// per-node lifecycle events.
//
// # Log Levels
//
// The package supports five log levels, in order of increasing severity:
//
//   - LogLevelDebug: Detailed debugging information for development
//   - LogLevelInfo: General informational messages about normal operation
//   - LogLevelWarn: Warning messages for potentially problematic situations
//   - LogLevelError: Error messages for failures that need attention
//   - LogLevelNone: Disables all logging output
//
// # Available Implementations
//
// DefaultLogger wraps the standard library's log package. GologLogger
// wraps github.com/kataras/golog for structured, leveled output; it's the
// logger cmd/streamdag wires up by default.
//
//	logger := log.NewGologLogger(golog.Default)
//	logger.SetLevel(log.LogLevelInfo)
//	log.SetDefaultLogger(logger)
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use; the underlying standard
// library logger handles synchronization. GologLogger inherits golog's
// own concurrency guarantees.
package log
