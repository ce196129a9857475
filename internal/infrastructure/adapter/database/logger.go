package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
)

// DatabaseLogger is a GORM logger that writes through the core logger.
// Statements are logged with the request-scoped logger when the context carries one.
type DatabaseLogger struct {
	coreLogger    coreport.Logger
	logLevel      logger.LogLevel
	slowThreshold time.Duration
	timeProvider  coreport.TimeProvider
}

// ParseGormLevel maps an application log level onto GORM's levels
func ParseGormLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	default:
		return logger.Info
	}
}

// NewDatabaseLogger creates a new database logger
func NewDatabaseLogger(coreLogger coreport.Logger, timeProvider coreport.TimeProvider, level string, slowThreshold time.Duration) logger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &DatabaseLogger{
		coreLogger:    coreLogger.With(map[string]any{"source": "database"}),
		logLevel:      ParseGormLevel(level),
		slowThreshold: slowThreshold,
		timeProvider:  timeProvider,
	}
}

// LogMode sets the log level for the logger
func (l *DatabaseLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *DatabaseLogger) loggerFor(ctx context.Context) coreport.Logger {
	if ctx == nil {
		return l.coreLogger
	}
	return coreport.LoggerFromContext(ctx, l.coreLogger)
}

// Info logs info messages
func (l *DatabaseLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.loggerFor(ctx).Info(fmt.Sprintf(msg, data...), nil)
	}
}

// Warn logs warn messages
func (l *DatabaseLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.loggerFor(ctx).Warn(fmt.Sprintf(msg, data...), nil)
	}
}

// Error logs error messages
func (l *DatabaseLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.loggerFor(ctx).Error(fmt.Sprintf(msg, data...), nil)
	}
}

// Trace logs SQL operations
func (l *DatabaseLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := l.timeProvider.Since(begin).Std()
	sql, rows := fc()

	fields := map[string]any{
		"elapsed_ms": elapsed.Milliseconds(),
		"rows":       rows,
		"sql":        sql,
	}
	if queryType := extractQueryType(sql); queryType != "" {
		fields["type"] = queryType
	}

	log := l.loggerFor(ctx)
	switch {
	// a missing row is an expected outcome that repositories map to domain errors
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.logLevel >= logger.Error:
		fields["error"] = err.Error()
		log.Error("SQL error", fields)
	case elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		log.Warn("Slow SQL query", fields)
	case l.logLevel >= logger.Info:
		log.Debug("SQL query", fields)
	}
}

// extractQueryType determines the type of SQL statement
func extractQueryType(sql string) string {
	sqlUpper := strings.ToUpper(strings.TrimSpace(sql))
	for _, prefix := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sqlUpper, prefix) {
			return prefix
		}
	}
	return ""
}
