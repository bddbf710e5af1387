// Package credential quản lý nhiều GitHub token và chọn token còn quota.
package credential

import (
	"errors"
	"sync"
	"time"
)

// ErrNoUsableCredentials means every configured token was rejected with 401.
var ErrNoUsableCredentials = errors.New("no usable github credentials left")

// UnknownQuota marks a credential whose remaining quota has not been observed yet.
const UnknownQuota = -1

type Credential struct {
	Token     string    `json:"token"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
	Invalid   bool      `json:"invalid"`
}

// HasHeadroom reports whether the credential can be switched to under threshold.
// An unknown quota counts as headroom.
func (c Credential) HasHeadroom(threshold int) bool {
	if c.Invalid {
		return false
	}
	return c.Remaining == UnknownQuota || c.Remaining > threshold
}

// Pool holds the credentials and the index of the active one.
// Quota state lives only in memory and starts unknown on every process start.
type Pool struct {
	mu      sync.Mutex
	creds   []Credential
	current int
}

func NewPool(tokens []string) (*Pool, error) {
	if len(tokens) == 0 {
		return nil, ErrNoUsableCredentials
	}
	creds := make([]Credential, len(tokens))
	for i, t := range tokens {
		creds[i] = Credential{Token: t, Remaining: UnknownQuota}
	}
	return &Pool{creds: creds}, nil
}

func (p *Pool) Size() int {
	return len(p.creds)
}

// Current returns the index and a copy of the active credential.
func (p *Pool) Current() (int, Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.creds[p.current]
}

// Get returns a copy of credential idx.
func (p *Pool) Get(idx int) Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creds[idx]
}

// Rotate advances circularly to the next credential not marked invalid.
// With a single credential it is a no-op.
func (p *Pool) Rotate() (int, Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.creds)
	for step := 1; step < n; step++ {
		idx := (p.current + step) % n
		if !p.creds[idx].Invalid {
			p.current = idx
			break
		}
	}
	return p.current, p.creds[p.current]
}

// RecordQuota stores the quota observed on a response made with credential idx.
func (p *Pool) RecordQuota(idx, remaining int, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx < 0 || idx >= len(p.creds) {
		return
	}
	p.creds[idx].Remaining = remaining
	if !resetAt.IsZero() {
		p.creds[idx].ResetAt = resetAt
	}
}

// MarkInvalid flags credential idx as rejected. It returns ErrNoUsableCredentials
// once every credential is flagged.
func (p *Pool) MarkInvalid(idx int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx >= 0 && idx < len(p.creds) {
		p.creds[idx].Invalid = true
	}
	for _, c := range p.creds {
		if !c.Invalid {
			return nil
		}
	}
	return ErrNoUsableCredentials
}

// SelectWithHeadroom scans the other credentials starting just after the current
// index and switches to the first one above threshold. When nothing qualifies it
// returns ok=false and the time to wait for: the earliest reset across the pool,
// or the active credential's own reset when only one credential is configured.
func (p *Pool) SelectWithHeadroom(threshold int) (switched bool, waitUntil time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.creds)
	if n == 1 {
		return false, p.creds[0].ResetAt
	}

	for step := 1; step < n; step++ {
		idx := (p.current + step) % n
		if p.creds[idx].HasHeadroom(threshold) {
			p.current = idx
			return true, time.Time{}
		}
	}

	var earliest time.Time
	for _, c := range p.creds {
		if c.Invalid || c.ResetAt.IsZero() {
			continue
		}
		if earliest.IsZero() || c.ResetAt.Before(earliest) {
			earliest = c.ResetAt
		}
	}
	return false, earliest
}

// Snapshot returns a copy of every credential with the token redacted.
func (p *Pool) Snapshot() []Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Credential, len(p.creds))
	for i, c := range p.creds {
		c.Token = redact(c.Token)
		out[i] = c
	}
	return out
}

func redact(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
