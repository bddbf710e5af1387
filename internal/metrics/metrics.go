// Package metrics exposes crawl counters through Prometheus.
// All methods are safe on a nil *Metrics so components can run without it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Requests       *prometheus.CounterVec
	RateLimitWaits prometheus.Counter
	Rotations      prometheus.Counter
	Fallbacks      prometheus.Counter
	Repositories   *prometheus.CounterVec
	Detections     *prometheus.CounterVec
	QuotaRemaining *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "a11y_miner",
			Name:      "github_requests_total",
			Help:      "GitHub API requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		RateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "a11y_miner",
			Name:      "rate_limit_waits_total",
			Help:      "Times the crawler paused for a quota reset.",
		}),
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "a11y_miner",
			Name:      "credential_rotations_total",
			Help:      "Credential switches triggered by auth or quota failures.",
		}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "a11y_miner",
			Name:      "search_rest_fallbacks_total",
			Help:      "Search pages served by REST after a GraphQL failure.",
		}),
		Repositories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "a11y_miner",
			Name:      "repositories_total",
			Help:      "Repositories seen by the orchestrator, by outcome.",
		}, []string{"outcome"}),
		Detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "a11y_miner",
			Name:      "tool_detections_total",
			Help:      "Saved repositories where a catalog tool was detected.",
		}, []string{"tool"}),
		QuotaRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "a11y_miner",
			Name:      "credential_quota_remaining",
			Help:      "Last observed remaining quota per credential index.",
		}, []string{"credential"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.RateLimitWaits, m.Rotations, m.Fallbacks,
			m.Repositories, m.Detections, m.QuotaRemaining)
	}
	return m
}

func (m *Metrics) Request(kind, outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RateLimitWait() {
	if m == nil {
		return
	}
	m.RateLimitWaits.Inc()
}

func (m *Metrics) Rotation() {
	if m == nil {
		return
	}
	m.Rotations.Inc()
}

func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.Fallbacks.Inc()
}

func (m *Metrics) Repository(outcome string) {
	if m == nil {
		return
	}
	m.Repositories.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Detection(tool string) {
	if m == nil {
		return
	}
	m.Detections.WithLabelValues(tool).Inc()
}

func (m *Metrics) Quota(credential string, remaining int) {
	if m == nil {
		return
	}
	m.QuotaRemaining.WithLabelValues(credential).Set(float64(remaining))
}
