package crawler

import (
	"context"

	"github.com/thep200/a11y-miner/internal/model"
)

// Sink receives every saved repository after the ledger row is durable.
// Sink failures are logged; they never stop the crawl.
type Sink interface {
	Name() string
	Save(ctx context.Context, msg model.DetectionMessage) error
	Close() error
}

// DetectionUpserter is implemented by *model.DetectionStore.
type DetectionUpserter interface {
	Upsert(ctx context.Context, msg model.DetectionMessage) error
}

// Publisher is implemented by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

type mirrorSink struct {
	store DetectionUpserter
}

// NewMirrorSink mirrors detections into MySQL.
func NewMirrorSink(store DetectionUpserter) Sink {
	return &mirrorSink{store: store}
}

func (s *mirrorSink) Name() string { return "mysql" }

func (s *mirrorSink) Save(ctx context.Context, msg model.DetectionMessage) error {
	return s.store.Upsert(ctx, msg)
}

func (s *mirrorSink) Close() error { return nil }

type eventSink struct {
	producer Publisher
}

// NewEventSink publishes detections to Kafka keyed by full name.
func NewEventSink(producer Publisher) Sink {
	return &eventSink{producer: producer}
}

func (s *eventSink) Name() string { return "kafka" }

func (s *eventSink) Save(ctx context.Context, msg model.DetectionMessage) error {
	return s.producer.Publish(ctx, msg.FullName, msg)
}

func (s *eventSink) Close() error { return s.producer.Close() }
