package crawler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/pkg/kafka"
	"github.com/thep200/a11y-miner/pkg/log"
)

type memWriter struct {
	msgs   []kafkago.Message
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

type upserts struct {
	msgs []model.DetectionMessage
}

func (u *upserts) Upsert(_ context.Context, msg model.DetectionMessage) error {
	u.msgs = append(u.msgs, msg)
	return nil
}

func detectionMessage() model.DetectionMessage {
	return model.DetectionMessage{
		RunID:      "run-1",
		FullName:   "acme/site",
		Stars:      42,
		LastCommit: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Tools:      map[string]bool{"AXE": true, "Pa11y": false},
		ToolOrder:  []string{"AXE", "Pa11y"},
	}
}

func TestEventSinkPublishesKeyedByFullName(t *testing.T) {
	logger, _ := log.NewCslLogger("error")
	w := &memWriter{}
	sink := NewEventSink(kafka.NewProducerWithWriter(w, "a11y-detections", logger))

	require.NoError(t, sink.Save(context.Background(), detectionMessage()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "acme/site", string(w.msgs[0].Key))

	var got model.DetectionMessage
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, []string{"AXE"}, got.DetectedTools())
	assert.Equal(t, "run-1", got.RunID)

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
	assert.Equal(t, "kafka", sink.Name())
}

func TestMirrorSinkUpserts(t *testing.T) {
	u := &upserts{}
	sink := NewMirrorSink(u)

	require.NoError(t, sink.Save(context.Background(), detectionMessage()))
	require.Len(t, u.msgs, 1)
	assert.Equal(t, "acme/site", u.msgs[0].FullName)
	assert.Equal(t, "mysql", sink.Name())
	assert.NoError(t, sink.Close())
}
