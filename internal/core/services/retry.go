package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Retry defaults shared by the embedding client and the answer synthesizer.
const (
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
)

// retryPolicy bounds the attempts made for one logical provider call.
type retryPolicy struct {
	attempts    int
	callTimeout time.Duration
	provider    string

	// sleep waits for d or until ctx is done. Tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// backoff returns the delay before attempt n+1, n counted from zero.
// A provider-requested Retry-After takes precedence.
func backoff(n int, err error) time.Duration {
	if after := domain.RetryAfter(err); after > 0 {
		return min(after, retryMaxDelay)
	}
	d := retryBaseDelay << n
	if d <= 0 || d > retryMaxDelay {
		return retryMaxDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// do runs fn until it succeeds, fails with a non-retryable error, the
// attempts are exhausted or ctx is done. Each attempt gets its own timeout.
// A deadline hit by the per-call timeout is reported as a Timeout provider
// error so it is retried like any other transient failure.
func (p retryPolicy) do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.attempts, 1)
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for n := 0; n < attempts; n++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		err = p.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !domain.IsRetryable(err) || n == attempts-1 {
			break
		}

		delay := backoff(n, err)
		logger.Debug("%s call failed (attempt %d/%d), retrying in %s: %v", p.provider, n+1, attempts, delay, err)
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return err
}

func (p retryPolicy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx := ctx
	if p.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
	}

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return &domain.ProviderError{
			Provider: p.provider,
			Kind:     domain.ProviderTimeout,
			Message:  fmt.Sprintf("no response within %s", p.callTimeout),
			Err:      err,
		}
	}
	if ctx.Err() == nil && errors.Is(err, context.Canceled) {
		return err
	}
	// Unclassified failures are treated as the provider being unavailable.
	return &domain.ProviderError{
		Provider: p.provider,
		Kind:     domain.ProviderUnavailable,
		Err:      err,
	}
}
