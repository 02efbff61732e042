package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func response(status int, headers map[string]string) *http.Response {
	resp := &http.Response{StatusCode: status, Header: http.Header{}}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestLimiter_WaitUnlimited(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestLimiter_WaitHonoursCancellation(t *testing.T) {
	l := New(0.001, 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestLimiter_ObserveQuota(t *testing.T) {
	l := New(0, 1)
	assert.Equal(t, -1, l.Remaining())

	l.Observe(response(http.StatusOK, map[string]string{
		HeaderRemainingRequests: "42",
		HeaderResetRequests:     "1s",
	}))
	assert.Equal(t, 42, l.Remaining())

	l.Observe(response(http.StatusOK, map[string]string{HeaderRemainingRequests: "junk"}))
	assert.Equal(t, 42, l.Remaining())
	l.Observe(nil)
}

func TestLimiter_WaitsForResetWhenQuotaExhausted(t *testing.T) {
	l := New(0, 1)
	l.Observe(response(http.StatusOK, map[string]string{
		HeaderRemainingRequests: "0",
		HeaderResetRequests:     "1h",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, RetryAfter(nil, now))
	assert.Zero(t, RetryAfter(response(429, nil), now))
	assert.Equal(t, 3*time.Second, RetryAfter(response(429, map[string]string{HeaderRetryAfter: "3"}), now))
	assert.Equal(t, 10*time.Second, RetryAfter(response(429, map[string]string{
		HeaderRetryAfter: now.Add(10 * time.Second).Format(http.TimeFormat),
	}), now))
	assert.Zero(t, RetryAfter(response(429, map[string]string{HeaderRetryAfter: "soon"}), now))
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		status    int
		sentinel  error
		retryable bool
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimited, true},
		{http.StatusUnauthorized, domain.ErrUnauthorized, false},
		{http.StatusForbidden, domain.ErrUnauthorized, false},
		{http.StatusGatewayTimeout, domain.ErrTimeout, true},
		{http.StatusServiceUnavailable, domain.ErrUnavailable, true},
		{http.StatusBadRequest, domain.ErrRejected, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			perr := ResponseError("openai", response(tt.status, map[string]string{HeaderRetryAfter: "2"}), []byte(" boom \n"))
			assert.ErrorIs(t, perr, tt.sentinel)
			assert.Equal(t, tt.retryable, perr.Retryable())
			assert.Equal(t, tt.status, perr.StatusCode)
			assert.Equal(t, "boom", perr.Message)
		})
	}

	perr := ResponseError("openai", response(http.StatusTooManyRequests, map[string]string{HeaderRetryAfter: "2"}), nil)
	assert.Equal(t, 2*time.Second, perr.RetryAfter)
}

func TestTransportError(t *testing.T) {
	assert.ErrorIs(t, TransportError("ollama", context.Canceled), context.Canceled)
	assert.ErrorIs(t, TransportError("ollama", context.DeadlineExceeded), domain.ErrTimeout)

	err := TransportError("ollama", errors.New("connection refused"))
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.True(t, domain.IsRetryable(err))
}

func TestResponseError_TrimsLongBodies(t *testing.T) {
	body := make([]byte, 2*maxMessageLength)
	for i := range body {
		body[i] = 'x'
	}
	perr := ResponseError("openai", response(http.StatusBadRequest, nil), body)
	assert.Len(t, perr.Message, maxMessageLength+3)
}
