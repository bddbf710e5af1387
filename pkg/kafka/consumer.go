package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/a11y-miner/pkg/log"
)

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Handler processes one message value. The message key is used for routing.
type Handler func(ctx context.Context, key string, value []byte) error

// Consumer handles Kafka message consumption
type Consumer struct {
	Logger   log.Logger
	Topic    string
	reader   MessageReader
	fallback Handler
	handlers map[string]Handler
}

// NewConsumer creates a group consumer for topic
func NewConsumer(brokers []string, topic, groupID string, logger log.Logger) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return NewConsumerWithReader(reader, topic, logger), nil
}

func NewConsumerWithReader(r MessageReader, topic string, logger log.Logger) *Consumer {
	return &Consumer{
		Logger:   logger,
		Topic:    topic,
		reader:   r,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler registers a message handler for a specific message key
func (c *Consumer) RegisterHandler(key string, handler Handler) {
	c.handlers[key] = handler
}

// RegisterFallback handles keys without a dedicated handler.
func (c *Consumer) RegisterFallback(handler Handler) {
	c.fallback = handler
}

// Start reads until ctx is cancelled or the reader fails permanently.
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info(ctx, "Starting Kafka consumer for topic: %s", c.Topic)

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			// The reader answers io.EOF once closed.
			if errors.Is(err, io.EOF) || errors.Is(err, kafka.ErrGroupClosed) {
				return nil
			}
			c.Logger.Error(ctx, "Error reading message: %v", err)
			continue
		}

		key := string(message.Key)
		handler, exists := c.handlers[key]
		if !exists {
			handler = c.fallback
		}
		if handler == nil {
			c.Logger.Warn(ctx, "No handler registered for message with key: %s", key)
			continue
		}
		if err := handler(ctx, key, message.Value); err != nil {
			c.Logger.Error(ctx, "Error handling message with key %s: %v", key, err)
		} else {
			c.Logger.Debug(ctx, "Processed message with key: %s", key)
		}
	}
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
