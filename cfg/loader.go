package cfg

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	loader     Loader
	loaderOnce sync.Once
)

// ErrNoCredentials is returned when no GitHub token is present in the environment.
var ErrNoCredentials = errors.New("no github credentials found in environment (GITHUB_TOKENS, GITHUB_TOKEN, GITHUB_TOKEN_<n>)")

type Loader interface {
	Load() (*Config, error)
}

func NewLoader(l Loader) (Loader, error) {
	loaderOnce.Do(func() {
		loader = l
	})
	return loader, nil
}

// CollectTokens gom các token từ biến môi trường, giữ thứ tự và loại bỏ trùng lặp.
// Thứ tự: GITHUB_TOKENS (phân tách bằng dấu phẩy), GITHUB_TOKEN, rồi GITHUB_TOKEN_<n> tăng dần theo n.
func CollectTokens(environ []string) []string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	var tokens []string
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tokens = append(tokens, t)
	}

	for _, t := range strings.Split(env["GITHUB_TOKENS"], ",") {
		add(t)
	}
	add(env["GITHUB_TOKEN"])

	type numbered struct {
		n     int
		token string
	}
	var extra []numbered
	for k, v := range env {
		suffix, ok := strings.CutPrefix(k, "GITHUB_TOKEN_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		extra = append(extra, numbered{n: n, token: v})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].n < extra[j].n })
	for _, e := range extra {
		add(e.token)
	}

	return tokens
}

// AttachTokens reads credentials from the process environment into config.
func AttachTokens(config *Config) {
	config.GithubApi.Tokens = CollectTokens(os.Environ())
}

// RequireCredentials fails when no token was found. Only commands that call
// GitHub need it.
func (c *Config) RequireCredentials() error {
	if len(c.GithubApi.Tokens) == 0 {
		return ErrNoCredentials
	}
	return nil
}

// Validate rejects configurations the crawler cannot run with.
func (c *Config) Validate() error {
	if len(c.Crawl.Queries) == 0 {
		return fmt.Errorf("[ERROR][CONFIG] crawl.queries must not be empty")
	}
	if c.Crawl.PerPage <= 0 || c.Crawl.PerPage > 100 {
		return fmt.Errorf("[ERROR][CONFIG] crawl.perPage must be in 1..100, got %d", c.Crawl.PerPage)
	}
	if c.Output.LedgerPath == "" || c.Output.StatePath == "" || c.Output.ProcessedPath == "" {
		return fmt.Errorf("[ERROR][CONFIG] output paths must be set")
	}
	if _, err := c.Crawl.Cutoff(); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] invalid crawl.cutoffDate: %w", err)
	}
	return nil
}
