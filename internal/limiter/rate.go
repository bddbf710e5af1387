package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Giới hạn số lượng request mỗi giây gửi tới GitHub
type RateLimiter struct {
	inner *rate.Limiter
}

// NewRateLimiter returns a token bucket refilled at requestsPerSecond.
// A non-positive rate disables pacing.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		inner: rate.NewLimiter(limit, burst),
	}
}

// Allow kiểm tra xem có thể thực hiện request mới ngay lúc này hay không
func (r *RateLimiter) Allow() bool {
	return r.inner.AllowN(time.Now(), 1)
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.inner.Wait(ctx)
}
