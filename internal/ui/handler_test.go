package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/a11y-miner/internal/crawler"
	"github.com/thep200/a11y-miner/internal/credential"
	"github.com/thep200/a11y-miner/internal/metrics"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/internal/store"
	"github.com/thep200/a11y-miner/pkg/log"
)

type fakeLister struct {
	rows   []model.Detection
	err    error
	filter model.DetectionFilter
}

func (f *fakeLister) List(_ context.Context, filter model.DetectionFilter) ([]model.Detection, int64, error) {
	f.filter = filter
	return f.rows, int64(len(f.rows)), f.err
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func newHandler(session func() *crawler.CrawlSession, lister DetectionLister) (*Handler, *metrics.Metrics) {
	logger, _ := log.NewCslLogger("error")
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	return NewHandler(logger, reg, session, lister), m
}

func TestStatus(t *testing.T) {
	session := crawler.NewCrawlSession(&store.CrawlState{Strategy: 1, Page: 4, AnalyzedCount: 10, SavedCount: 3},
		store.NewProcessedSet("acme/site", "acme/lib"), time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	h, _ := newHandler(func() *crawler.CrawlSession { return session }, nil)

	rec := serve(t, h, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var got crawler.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, session.RunID, got.RunID)
	assert.Equal(t, 1, got.Strategy)
	assert.Equal(t, 4, got.Page)
	assert.Equal(t, 10, got.Analyzed)
	assert.Equal(t, 3, got.Saved)
	assert.Equal(t, 2, got.Processed)
}

func TestStatusBeforeCrawl(t *testing.T) {
	h, _ := newHandler(func() *crawler.CrawlSession { return nil }, nil)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, h, "/status").Code)
}

func TestCredentials(t *testing.T) {
	pool, err := credential.NewPool([]string{"ghp_secret1234", "ghp_other5678"})
	require.NoError(t, err)
	pool.RecordQuota(0, 420, time.Date(2024, 11, 1, 13, 0, 0, 0, time.UTC))
	require.NoError(t, pool.MarkInvalid(1))

	h, _ := newHandler(nil, nil)
	h.Credentials = pool.Snapshot

	rec := serve(t, h, "/status/credentials")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	var got []credential.Credential
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "****1234", got[0].Token)
	assert.Equal(t, 420, got[0].Remaining)
	assert.True(t, got[1].Invalid)

	h.Credentials = nil
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, h, "/status/credentials").Code)
}

func TestMetrics(t *testing.T) {
	h, m := newHandler(nil, nil)
	m.Fallback()
	m.Repository("saved")

	rec := serve(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a11y_miner_search_rest_fallbacks_total 1")
	assert.Contains(t, rec.Body.String(), `a11y_miner_repositories_total{outcome="saved"} 1`)
}

func TestDetections(t *testing.T) {
	lister := &fakeLister{rows: []model.Detection{{
		FullName:   "acme/site",
		Stars:      42,
		LastCommit: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		Language:   "JavaScript",
		Tools:      "AXE,Lighthouse",
		RunID:      "run-1",
	}}}
	h, _ := newHandler(nil, lister)

	rec := serve(t, h, "/api/detections?page=2&pageSize=500&search=acme&tool=AXE")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.DetectionFilter{Search: "acme", Tool: "AXE", Page: 2, PageSize: 50}, lister.filter)

	var body struct {
		Detections []Detection            `json:"detections"`
		Pagination map[string]interface{} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Detections, 1)
	assert.Equal(t, []string{"AXE", "Lighthouse"}, body.Detections[0].Tools)
	assert.Equal(t, "2024-10-01", body.Detections[0].LastCommit)
	assert.Equal(t, float64(1), body.Pagination["totalCount"])
}

func TestDetectionsErrors(t *testing.T) {
	h, _ := newHandler(nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, h, "/api/detections").Code)

	h, _ = newHandler(nil, &fakeLister{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, serve(t, h, "/api/detections").Code)
}
