package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestCslLoggerFiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCslLoggerTo(&buf, "warn")
	ctx := context.Background()

	logger.Debug(ctx, "hidden %d", 1)
	logger.Info(ctx, "hidden %d", 2)
	logger.Warn(ctx, "shown %s", "warn")
	logger.Error(ctx, "shown %s", "error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown warn")
	assert.Contains(t, out, "[ERROR] shown error")
}
