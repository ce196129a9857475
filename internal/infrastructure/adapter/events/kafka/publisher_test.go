package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/logger"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisherPublish(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newPublisher(writer, "trade.committed", logger.NewNoopLogger())

	entry := &entity.LedgerEntry{
		ID:        3,
		UserID:    42,
		Symbol:    "AAPL",
		Shares:    10,
		Price:     decimal.RequireFromString("100"),
		Total:     decimal.RequireFromString("1000"),
		CreatedAt: time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
	}
	event := entity.NewTradeCommitted(entry, decimal.RequireFromString("9000"))

	require.NoError(t, publisher.Publish(context.Background(), event.Key(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "AAPL", decoded["symbol"])
	assert.Equal(t, "buy", decoded["side"])
}

func TestPublisherPublishFailure(t *testing.T) {
	writer := &recordingWriter{err: errors.New("leader not available")}
	publisher := newPublisher(writer, "trade.committed", logger.NewNoopLogger())

	err := publisher.Publish(context.Background(), "1", map[string]string{"k": "v"})
	assert.EqualError(t, err, "write to trade.committed: leader not available")
}

func TestPublisherRejectsUnmarshalableEvents(t *testing.T) {
	publisher := newPublisher(&recordingWriter{}, "trade.committed", logger.NewNoopLogger())

	err := publisher.Publish(context.Background(), "1", make(chan int))
	assert.ErrorContains(t, err, "marshal event")
}

func TestPublisherClose(t *testing.T) {
	writer := &recordingWriter{}
	require.NoError(t, newPublisher(writer, "t", logger.NewNoopLogger()).Close())
	assert.True(t, writer.closed)
}
