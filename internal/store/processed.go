package store

import (
	"sort"
	"sync"
)

// ProcessedSet holds the full names already evaluated. It only grows.
type ProcessedSet struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewProcessedSet(names ...string) *ProcessedSet {
	s := &ProcessedSet{names: make(map[string]struct{}, len(names))}
	s.AddAll(names)
	return s
}

func (s *ProcessedSet) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

// Add reports whether name was new.
func (s *ProcessedSet) Add(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[name]; ok {
		return false
	}
	s.names[name] = struct{}{}
	return true
}

// AddAll returns how many names were new.
func (s *ProcessedSet) AddAll(names []string) int {
	added := 0
	for _, n := range names {
		if n != "" && s.Add(n) {
			added++
		}
	}
	return added
}

func (s *ProcessedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Names returns a sorted copy.
func (s *ProcessedSet) Names() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// ProcessedStore persists a ProcessedSet as a JSON array of names.
type ProcessedStore struct {
	Path string
}

func NewProcessedStore(path string) *ProcessedStore {
	return &ProcessedStore{Path: path}
}

func (p *ProcessedStore) Load() (*ProcessedSet, error) {
	var names []string
	if _, err := readJSON(p.Path, &names); err != nil {
		return nil, err
	}
	return NewProcessedSet(names...), nil
}

func (p *ProcessedStore) Save(s *ProcessedSet) error {
	return writeJSON(p.Path, s.Names())
}
