// Package probetest provides an in-memory repository content source for tests.
package probetest

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	githubapi "github.com/thep200/a11y-miner/internal/github_api"
)

type repo struct {
	files  map[string]string
	readme *string
}

// Source serves files for any number of repositories. Directory listings are
// derived from the file paths.
type Source struct {
	mu    sync.Mutex
	repos map[string]*repo
	Errs  map[string]error
	Calls map[string]int
}

func New() *Source {
	return &Source{
		repos: map[string]*repo{},
		Errs:  map[string]error{},
		Calls: map[string]int{},
	}
}

func (s *Source) repo(fullName string) *repo {
	r, ok := s.repos[fullName]
	if !ok {
		r = &repo{files: map[string]string{}}
		s.repos[fullName] = r
	}
	return r
}

// AddFile stores a file; parent directories appear in listings automatically.
func (s *Source) AddFile(fullName, filePath, content string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo(fullName).files[filePath] = content
	return s
}

// SetReadme makes the README endpoint answer with content.
func (s *Source) SetReadme(fullName, content string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo(fullName).readme = &content
	return s
}

func (s *Source) count(key string) error {
	s.Calls[key]++
	return s.Errs[key]
}

func (s *Source) GetFile(_ context.Context, fullName, filePath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.count(fullName + ":file:" + filePath); err != nil {
		return "", err
	}
	c, ok := s.repo(fullName).files[filePath]
	if !ok {
		return "", githubapi.ErrNotFound
	}
	return c, nil
}

func (s *Source) ListDir(_ context.Context, fullName, dirPath string) ([]githubapi.ContentEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.count(fullName + ":dir:" + dirPath); err != nil {
		return nil, err
	}
	prefix := ""
	if dirPath != "" {
		prefix = strings.Trim(dirPath, "/") + "/"
	}
	seen := map[string]githubapi.ContentEntry{}
	for p := range s.repo(fullName).files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		name, _, isDir := strings.Cut(rest, "/")
		entry := githubapi.ContentEntry{Type: "file", Name: name, Path: path.Join(strings.TrimSuffix(prefix, "/"), name)}
		if isDir {
			entry.Type = "dir"
		}
		seen[name] = entry
	}
	if len(seen) == 0 {
		return nil, githubapi.ErrNotFound
	}
	entries := make([]githubapi.ContentEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *Source) Readme(_ context.Context, fullName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.count(fullName + ":readme"); err != nil {
		return "", err
	}
	r := s.repo(fullName).readme
	if r == nil {
		return "", githubapi.ErrNotFound
	}
	return *r, nil
}
