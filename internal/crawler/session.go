package crawler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thep200/a11y-miner/internal/store"
)

// Skip reasons, also used as metric outcomes.
const (
	SkipProcessed = "processed"
	SkipStale     = "stale"
	SkipFork      = "fork"
	SkipArchived  = "archived"
	SkipStars     = "few_stars"
	SkipLibrary   = "library"
	SkipNotWeb    = "not_web"
	// SkipFailed is not added to the processed set.
	SkipFailed = "failed"
)

// CrawlSession holds the mutable state of one run. The orchestrator is the only
// writer; Status may be read from other goroutines.
type CrawlSession struct {
	RunID     string
	StartedAt time.Time
	Processed *store.ProcessedSet

	mu       sync.Mutex
	strategy int
	query    string
	page     int
	cursor   *string
	analyzed int
	saved    int
	skipped  map[string]int
}

// Status is a point-in-time copy of a session.
type Status struct {
	RunID     string         `json:"runId"`
	StartedAt time.Time      `json:"startedAt"`
	Strategy  int            `json:"strategy"`
	Query     string         `json:"query"`
	Page      int            `json:"page"`
	Cursor    *string        `json:"cursor"`
	Analyzed  int            `json:"analyzedCount"`
	Saved     int            `json:"savedCount"`
	Skipped   map[string]int `json:"skipped"`
	Processed int            `json:"processedCount"`
}

// NewCrawlSession resumes counters and position from st under a fresh run id.
func NewCrawlSession(st *store.CrawlState, processed *store.ProcessedSet, now time.Time) *CrawlSession {
	return &CrawlSession{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Processed: processed,
		strategy:  st.Strategy,
		page:      st.Page,
		cursor:    st.Cursor,
		analyzed:  st.AnalyzedCount,
		saved:     st.SavedCount,
		skipped:   map[string]int{},
	}
}

func (s *CrawlSession) position() (int, *string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy, s.cursor, s.page
}

func (s *CrawlSession) moveTo(strategy int, query string, cursor *string, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategy, s.query, s.cursor, s.page = strategy, query, cursor, page
}

func (s *CrawlSession) countAnalyzed() {
	s.mu.Lock()
	s.analyzed++
	s.mu.Unlock()
}

func (s *CrawlSession) countSaved() {
	s.mu.Lock()
	s.saved++
	s.mu.Unlock()
}

func (s *CrawlSession) countSkip(reason string) {
	s.mu.Lock()
	s.skipped[reason]++
	s.mu.Unlock()
}

// State is the snapshot persisted after every page.
func (s *CrawlSession) State(now time.Time) *store.CrawlState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &store.CrawlState{
		Cursor:        s.cursor,
		Strategy:      s.strategy,
		Page:          s.page,
		LastRun:       now,
		AnalyzedCount: s.analyzed,
		SavedCount:    s.saved,
		RunID:         s.RunID,
	}
}

func (s *CrawlSession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	skipped := make(map[string]int, len(s.skipped))
	for k, v := range s.skipped {
		skipped[k] = v
	}
	return Status{
		RunID:     s.RunID,
		StartedAt: s.StartedAt,
		Strategy:  s.strategy,
		Query:     s.query,
		Page:      s.page,
		Cursor:    s.cursor,
		Analyzed:  s.analyzed,
		Saved:     s.saved,
		Skipped:   skipped,
		Processed: s.Processed.Len(),
	}
}
