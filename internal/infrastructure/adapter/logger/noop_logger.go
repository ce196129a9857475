package logger

import (
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// NoopLogger implements the Logger interface but doesn't do anything
// Useful for testing or when logging is disabled
type NoopLogger struct {
	level core.LogLevel
}

// NewNoopLogger creates a new no-op logger
func NewNoopLogger() core.Logger {
	return &NoopLogger{
		level: core.LogLevelInfo,
	}
}

// SetLevel sets the minimum log level to output
func (l *NoopLogger) SetLevel(level core.LogLevel) {
	l.level = level
}

// GetLevel gets the current log level
func (l *NoopLogger) GetLevel() core.LogLevel {
	return l.level
}

// With returns the same logger; there is nothing to annotate
func (l *NoopLogger) With(map[string]any) core.Logger {
	return l
}

func (l *NoopLogger) Debug(string, map[string]any) {}

func (l *NoopLogger) Info(string, map[string]any) {}

func (l *NoopLogger) Warn(string, map[string]any) {}

func (l *NoopLogger) Error(string, map[string]any) {}

// Flush is a no-op
func (l *NoopLogger) Flush() error {
	return nil
}
