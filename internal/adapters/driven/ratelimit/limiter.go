// Package ratelimit throttles calls to AI provider APIs and classifies
// their failures into domain provider errors.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"

	// HeaderRemainingRequests is the remaining request quota header sent by
	// OpenAI-compatible APIs.
	HeaderRemainingRequests = "X-Ratelimit-Remaining-Requests"

	// HeaderResetRequests is the time until the request quota resets,
	// formatted as a Go-style duration such as "1s" or "6m0s".
	HeaderResetRequests = "X-Ratelimit-Reset-Requests"
)

// Limiter combines proactive token-bucket throttling with the quota the
// provider reports in its response headers.
type Limiter struct {
	mu        sync.Mutex
	bucket    *rate.Limiter
	remaining int
	resetAt   time.Time
	now       func() time.Time
}

// New creates a limiter allowing rps requests per second with the given
// burst. A non-positive rps disables proactive throttling.
func New(rps float64, burst int) *Limiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		bucket:    rate.NewLimiter(limit, burst),
		remaining: -1,
		now:       time.Now,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.bucket.Wait(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	remaining := l.remaining
	resetAt := l.resetAt
	l.mu.Unlock()

	if remaining != 0 || !l.now().Before(resetAt) {
		return nil
	}

	timer := time.NewTimer(resetAt.Sub(l.now()))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota reported by a response.
func (l *Limiter) Observe(resp *http.Response) {
	if resp == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if v := resp.Header.Get(HeaderRemainingRequests); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			l.remaining = n
		}
	}
	if v := resp.Header.Get(HeaderResetRequests); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			l.resetAt = l.now().Add(d)
		}
	}
}

// Remaining returns the last reported request quota, or -1 when unknown.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// RetryAfter parses the Retry-After header of resp. It returns zero when
// the header is absent or malformed.
func RetryAfter(resp *http.Response, now time.Time) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get(HeaderRetryAfter)
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
