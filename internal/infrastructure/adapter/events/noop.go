package events

import (
	"context"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/event"
)

// LogPublisher is used when no brokers are configured; events are only logged at debug level
type LogPublisher struct {
	logger coreport.Logger
}

var _ event.Publisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher that drops events after logging them
func NewLogPublisher(logger coreport.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event key and never fails
func (p *LogPublisher) Publish(ctx context.Context, key string, payload any) error {
	coreport.LoggerFromContext(ctx, p.logger).Debug("Event not published, no brokers configured", map[string]any{
		"key":   key,
		"event": payload,
	})
	return nil
}

// Close is a no-op
func (p *LogPublisher) Close() error {
	return nil
}
