package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/pkg/log"
)

type recordingStore struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (s *recordingStore) UpsertBatch(_ context.Context, msgs []model.DetectionMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(msgs))
	for _, m := range msgs {
		names = append(names, m.FullName)
	}
	s.batches = append(s.batches, names)
	return s.err
}

func (s *recordingStore) snapshot() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.batches...)
}

func quietLogger() log.Logger {
	return log.NewCslLoggerTo(io.Discard, "error")
}

func msg(name string) model.DetectionMessage {
	return model.DetectionMessage{FullName: name}
}

func TestBatcherFlushesOnSize(t *testing.T) {
	store := &recordingStore{}
	b := &batcher{Logger: quietLogger(), Store: store, Size: 2, Timeout: time.Hour}

	messages := make(chan model.DetectionMessage, 5)
	messages <- msg("a/1")
	messages <- msg("a/2")
	messages <- msg("a/3")
	close(messages)

	b.Run(context.Background(), messages)

	assert.Equal(t, [][]string{{"a/1", "a/2"}, {"a/3"}}, store.snapshot())
}

func TestBatcherFlushesOnTimeout(t *testing.T) {
	store := &recordingStore{}
	b := &batcher{Logger: quietLogger(), Store: store, Size: 100, Timeout: 10 * time.Millisecond}

	messages := make(chan model.DetectionMessage, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx, messages)
	}()

	messages <- msg("a/1")
	assert.Eventually(t, func() bool { return len(store.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, [][]string{{"a/1"}}, store.snapshot())
}

func TestBatcherDrainsOnCancel(t *testing.T) {
	store := &recordingStore{}
	b := &batcher{Logger: quietLogger(), Store: store, Size: 100, Timeout: time.Hour}

	messages := make(chan model.DetectionMessage, 3)
	messages <- msg("a/1")
	messages <- msg("a/2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b.Run(ctx, messages)

	var all []string
	for _, batch := range store.snapshot() {
		all = append(all, batch...)
	}
	assert.ElementsMatch(t, []string{"a/1", "a/2"}, all)
}

func TestBatcherKeepsRunningAfterStoreError(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	b := &batcher{Logger: quietLogger(), Store: store, Size: 1, Timeout: time.Hour}

	messages := make(chan model.DetectionMessage, 2)
	messages <- msg("a/1")
	messages <- msg("a/2")
	close(messages)

	b.Run(context.Background(), messages)

	assert.Len(t, store.snapshot(), 2)
}
