package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/event"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes domain events to a kafka topic as JSON.
// Messages are keyed so that one user's trades land on one partition in order.
type Publisher struct {
	writer messageWriter
	topic  string
	logger coreport.Logger
}

var _ event.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher for topic on brokers
func NewPublisher(brokers []string, topic string, writeTimeout time.Duration, logger coreport.Logger) *Publisher {
	if topic == "" {
		topic = event.TopicTradeCommitted
	}
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}, topic, logger)
}

func newPublisher(writer messageWriter, topic string, logger coreport.Logger) *Publisher {
	return &Publisher{writer: writer, topic: topic, logger: logger}
}

// Publish marshals the event and writes it synchronously
func (p *Publisher) Publish(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
	if err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	coreport.LoggerFromContext(ctx, p.logger).Debug("Event published", map[string]any{
		"topic": p.topic,
		"key":   key,
		"bytes": len(data),
	})
	return nil
}

// Close flushes pending writes and releases the connection
func (p *Publisher) Close() error {
	return p.writer.Close()
}
