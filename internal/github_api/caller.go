// Gói githubapi là tầng transport tới GitHub: REST và GraphQL over HTTP.
// Caller gắn token đang hoạt động, đọc header rate limit sau mỗi response,
// thử lại khi lỗi tạm thời và xoay vòng token khi bị 401/403.

package githubapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/credential"
	"github.com/thep200/a11y-miner/internal/limiter"
	"github.com/thep200/a11y-miner/internal/metrics"
	"github.com/thep200/a11y-miner/internal/retry"
	"github.com/thep200/a11y-miner/pkg/log"
)

const (
	rateLimitCooldown = 5 * time.Second
	minQuotaWait      = 10 * time.Second
	resetGrace        = 5 * time.Second
	maxBodyBytes      = 20 << 20
)

type Caller struct {
	Logger  log.Logger
	Config  *cfg.Config
	Pool    *credential.Pool
	Limiter *limiter.RateLimiter
	Metrics *metrics.Metrics
	Client  *http.Client
	Sleep   retry.Sleeper
	Now     func() time.Time
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func NewCaller(logger log.Logger, config *cfg.Config, pool *credential.Pool, m *metrics.Metrics) *Caller {
	return &Caller{
		Logger:  logger,
		Config:  config,
		Pool:    pool,
		Limiter: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond, config.GithubApi.Burst),
		Metrics: m,
		Client:  &http.Client{Timeout: config.GithubApi.RequestTimeout()},
		Sleep:   retry.Sleep,
		Now:     time.Now,
	}
}

// Policy: 401 retries immediately, 403 waits rateLimitCooldown, anything else
// (client timeouts included) waits 1s × attempt. 404 and a fully rejected pool
// are never retried.
func (c *Caller) Policy() retry.Policy {
	attempts := c.Config.GithubApi.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	linear := retry.Linear(time.Second)
	return retry.Policy{
		MaxAttempts: attempts,
		Backoff: func(attempt int, err error) time.Duration {
			switch {
			case errors.Is(err, ErrAuth):
				return 0
			case errors.Is(err, ErrRateLimit):
				return rateLimitCooldown
			default:
				return linear(attempt, err)
			}
		},
		Retryable: func(err error) bool {
			return !errors.Is(err, ErrNotFound) &&
				!errors.Is(err, credential.ErrNoUsableCredentials)
		},
	}
}

// Request sends one logical request, retrying per Policy. target may be an
// absolute URL or a path relative to the REST base URL.
func (c *Caller) Request(ctx context.Context, method, target string, headers http.Header, body []byte) (*Response, error) {
	url := c.resolve(target)
	kind := "rest"
	if url == c.Config.GithubApi.GraphqlUrl {
		kind = "graphql"
	}

	var out *Response
	err := retry.Do(ctx, c.Policy(), c.Sleep, func(ctx context.Context, attempt int) error {
		resp, err := c.attempt(ctx, method, url, headers, body)
		if err != nil {
			c.Metrics.Request(kind, outcome(err))
			if !errors.Is(err, ErrNotFound) {
				c.Logger.Warn(ctx, "Request %s %s failed (attempt %d): %v", method, url, attempt, err)
			}
			return err
		}
		c.Metrics.Request(kind, "ok")
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Caller) attempt(ctx context.Context, method, url string, headers http.Header, body []byte) (*Response, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	idx, cred := c.Pool.Current()
	if cred.Invalid {
		return nil, credential.ErrNoUsableCredentials
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.Config.App.Name)
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	httpResp, err := c.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}

	c.recordQuota(idx, httpResp.Header)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if _, err := c.guardQuota(ctx, idx); err != nil {
			return nil, err
		}
		return resp, nil
	case resp.StatusCode == http.StatusUnauthorized:
		if err := c.Pool.MarkInvalid(idx); err != nil {
			c.Logger.Critical(ctx, "Credential #%d rejected and no usable credential remains", idx)
			return nil, err
		}
		next, _ := c.Pool.Rotate()
		c.Metrics.Rotation()
		c.Logger.Warn(ctx, "Credential #%d rejected (401), switched to #%d", idx, next)
		return nil, ErrAuth
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		acted, err := c.guardQuota(ctx, idx)
		if err != nil {
			return nil, err
		}
		if !acted {
			next, _ := c.Pool.Rotate()
			c.Metrics.Rotation()
			c.Logger.Warn(ctx, "Credential #%d hit rate limit (%d), switched to #%d", idx, resp.StatusCode, next)
		}
		return nil, ErrRateLimit
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}
}

// recordQuota forwards X-RateLimit-Remaining / X-RateLimit-Reset to the pool.
func (c *Caller) recordQuota(idx int, h http.Header) {
	remainingStr := h.Get("X-RateLimit-Remaining")
	if remainingStr == "" {
		return
	}
	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return
	}
	var resetAt time.Time
	if resetStr := h.Get("X-RateLimit-Reset"); resetStr != "" {
		if unix, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			resetAt = time.Unix(unix, 0)
		}
	}
	c.Pool.RecordQuota(idx, remaining, resetAt)
	c.Metrics.Quota(strconv.Itoa(idx), remaining)
}

// guardQuota runs after quota is recorded. When credential idx is at or below
// the threshold it switches to a credential with headroom, or sleeps until
// max(reset+5s-now, 10s). It reports whether it did either.
func (c *Caller) guardQuota(ctx context.Context, idx int) (bool, error) {
	threshold := c.Config.GithubApi.QuotaThreshold
	cred := c.Pool.Get(idx)
	if cred.Remaining == credential.UnknownQuota || cred.Remaining > threshold {
		return false, nil
	}

	switched, until := c.Pool.SelectWithHeadroom(threshold)
	if switched {
		next, _ := c.Pool.Current()
		c.Metrics.Rotation()
		c.Logger.Info(ctx, "Credential #%d low on quota (%d), switched to #%d", idx, cred.Remaining, next)
		return true, nil
	}

	wait := QuotaWait(until, c.Now())
	c.Metrics.RateLimitWait()
	c.Logger.Warn(ctx, "Rate limit low (%d remaining), waiting %v until %s",
		cred.Remaining, wait.Round(time.Second), c.Now().Add(wait).Format(time.RFC3339))
	if err := c.Sleep(ctx, wait); err != nil {
		return true, err
	}
	return true, nil
}

// QuotaWait returns max(resetAt+5s-now, 10s).
func QuotaWait(resetAt, now time.Time) time.Duration {
	wait := resetAt.Add(resetGrace).Sub(now)
	if wait < minQuotaWait {
		wait = minQuotaWait
	}
	return wait
}

func (c *Caller) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return strings.TrimRight(c.Config.GithubApi.RestUrl, "/") + "/" + strings.TrimLeft(target, "/")
}

func outcome(err error) string {
	var te *TransportError
	switch {
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimit):
		return "rate_limited"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &te):
		return "transport"
	default:
		return "error"
	}
}
