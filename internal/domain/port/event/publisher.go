package event

import "context"

// TopicTradeCommitted names events emitted after a trade is durably recorded
const TopicTradeCommitted = "trade.committed"

// Publisher delivers domain events to interested consumers.
// Delivery is best effort; callers never undo committed work on failure.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}
