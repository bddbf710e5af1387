package kafka

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/a11y-miner/pkg/log"
)

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error { return nil }

func TestNewProducerRequiresBrokers(t *testing.T) {
	logger, _ := log.NewCslLogger("error")
	_, err := NewProducer(nil, "topic", logger)
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestPublishEncodesJSON(t *testing.T) {
	logger, _ := log.NewCslLogger("error")
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "topic", logger)

	require.NoError(t, p.Publish(context.Background(), "acme/site", map[string]int{"stars": 42}))
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "acme/site", string(w.msgs[0].Key))
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, 42, decoded["stars"])
	assert.True(t, w.closed)
}

func TestConsumerRoutesByKey(t *testing.T) {
	logger, _ := log.NewCslLogger("error")
	r := &fakeReader{msgs: []kafka.Message{
		{Key: []byte("special"), Value: []byte("1")},
		{Key: []byte("acme/site"), Value: []byte("2")},
	}}
	c := NewConsumerWithReader(r, "topic", logger)

	var special, other []string
	c.RegisterHandler("special", func(_ context.Context, _ string, v []byte) error {
		special = append(special, string(v))
		return nil
	})
	c.RegisterFallback(func(_ context.Context, key string, v []byte) error {
		other = append(other, key+"="+string(v))
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, []string{"1"}, special)
	assert.Equal(t, []string{"acme/site=2"}, other)
}
