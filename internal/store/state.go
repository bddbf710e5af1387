package store

import "time"

// CrawlState is the resume point written after every page. Cursor and Page
// belong to the strategy at index Strategy; Cursor is nil at the start of a
// strategy or after a REST fallback, Page is the next page to fetch.
type CrawlState struct {
	Cursor        *string   `json:"cursor"`
	Strategy      int       `json:"strategy"`
	Page          int       `json:"page"`
	LastRun       time.Time `json:"lastRun"`
	AnalyzedCount int       `json:"analyzedCount"`
	SavedCount    int       `json:"savedCount"`
	RunID         string    `json:"runId"`
}

type StateStore struct {
	Path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{Path: path}
}

// Load returns the saved state, or a zero state when none exists yet.
func (s *StateStore) Load() (*CrawlState, error) {
	st := &CrawlState{}
	if _, err := readJSON(s.Path, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StateStore) Save(st *CrawlState) error {
	return writeJSON(s.Path, st)
}
