package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Request("rest", "ok")
		m.RateLimitWait()
		m.Rotation()
		m.Fallback()
		m.Repository("saved")
		m.Detection("AXE")
		m.Quota("0", 10)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Repository("saved")
	m.Repository("saved")
	m.Repository("skipped_library")
	m.Fallback()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Repositories.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Repositories.WithLabelValues("skipped_library")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks))
}
