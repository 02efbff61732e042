package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestBackoff(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, backoff(0, nil))
	assert.Equal(t, 400*time.Millisecond, backoff(1, nil))
	assert.Equal(t, 800*time.Millisecond, backoff(2, nil))
	assert.Equal(t, 5*time.Second, backoff(10, nil))
	assert.Equal(t, 5*time.Second, backoff(80, nil))

	rl := &domain.ProviderError{Kind: domain.ProviderRateLimited, RetryAfter: 2 * time.Second}
	assert.Equal(t, 2*time.Second, backoff(0, rl))

	rl.RetryAfter = time.Minute
	assert.Equal(t, 5*time.Second, backoff(0, rl))
}

func TestRetryPolicy_RetriesTransient(t *testing.T) {
	var delays []time.Duration
	p := retryPolicy{attempts: 4, provider: "test", sleep: func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}}

	calls := 0
	err := p.do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &domain.ProviderError{Provider: "test", Kind: domain.ProviderUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}, delays)
}

func TestRetryPolicy_StopsOnPermanent(t *testing.T) {
	p := retryPolicy{attempts: 4, provider: "test", sleep: noSleep}

	calls := 0
	err := p.do(context.Background(), func(context.Context) error {
		calls++
		return &domain.ProviderError{Provider: "test", Kind: domain.ProviderUnauthorized}
	})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	p := retryPolicy{attempts: 3, provider: "test", sleep: noSleep}

	calls := 0
	err := p.do(context.Background(), func(context.Context) error {
		calls++
		return &domain.ProviderError{Provider: "test", Kind: domain.ProviderRateLimited}
	})

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_CallTimeoutBecomesTimeout(t *testing.T) {
	p := retryPolicy{attempts: 2, callTimeout: 10 * time.Millisecond, provider: "slow", sleep: noSleep}

	calls := 0
	err := p.do(context.Background(), func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicy_UnclassifiedIsUnavailable(t *testing.T) {
	p := retryPolicy{attempts: 1, provider: "test", sleep: noSleep}

	err := p.do(context.Background(), func(context.Context) error {
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestRetryPolicy_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := retryPolicy{attempts: 3, provider: "test", sleep: noSleep}
	called := false
	err := p.do(ctx, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
