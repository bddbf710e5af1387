package ui

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thep200/a11y-miner/internal/crawler"
	"github.com/thep200/a11y-miner/internal/credential"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/pkg/log"
)

// DetectionLister is implemented by *model.DetectionStore.
type DetectionLister interface {
	List(ctx context.Context, f model.DetectionFilter) ([]model.Detection, int64, error)
}

// Handler serves /metrics, /status, /status/credentials and /api/detections.
// Any of Gatherer, Session, Credentials and Detections may be nil; the
// matching route then answers 503.
type Handler struct {
	Logger      log.Logger
	Gatherer    prometheus.Gatherer
	Session     func() *crawler.CrawlSession
	Credentials func() []credential.Credential
	Detections  DetectionLister
}

func NewHandler(logger log.Logger, gatherer prometheus.Gatherer, session func() *crawler.CrawlSession, detections DetectionLister) *Handler {
	return &Handler{
		Logger:     logger,
		Gatherer:   gatherer,
		Session:    session,
		Detections: detections,
	}
}

// RegisterRoutes sets up the HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	if h.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{}))
	} else {
		mux.HandleFunc("/metrics", unavailable)
	}
	mux.HandleFunc("/status", h.getStatus)
	mux.HandleFunc("/status/credentials", h.getCredentials)
	mux.HandleFunc("/api/detections", h.getDetections)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	var session *crawler.CrawlSession
	if h.Session != nil {
		session = h.Session()
	}
	if session == nil {
		unavailable(w, r)
		return
	}
	h.writeJSON(w, r, session.Status())
}

// getCredentials lists quota per credential; tokens are already redacted.
func (h *Handler) getCredentials(w http.ResponseWriter, r *http.Request) {
	if h.Credentials == nil {
		unavailable(w, r)
		return
	}
	h.writeJSON(w, r, h.Credentials())
}

func unavailable(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Not available", http.StatusServiceUnavailable)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
