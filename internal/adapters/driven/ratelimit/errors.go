package ratelimit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// maxMessageLength bounds the provider error text kept in a ProviderError.
const maxMessageLength = 500

// ResponseError classifies a non-2xx provider response.
func ResponseError(provider string, resp *http.Response, body []byte) *domain.ProviderError {
	perr := &domain.ProviderError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    trimMessage(string(body)),
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		perr.Kind = domain.ProviderRateLimited
		perr.RetryAfter = RetryAfter(resp, time.Now())
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		perr.Kind = domain.ProviderUnauthorized
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusGatewayTimeout:
		perr.Kind = domain.ProviderTimeout
	case resp.StatusCode >= http.StatusInternalServerError:
		perr.Kind = domain.ProviderUnavailable
		perr.RetryAfter = RetryAfter(resp, time.Now())
	default:
		perr.Kind = domain.ProviderRejected
	}
	return perr
}

// TransportError classifies a failure to complete the HTTP exchange.
// Cancellation by the caller is returned unchanged.
func TransportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	kind := domain.ProviderUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = domain.ProviderTimeout
	}
	return &domain.ProviderError{Provider: provider, Kind: kind, Err: err}
}

// MalformedError reports a reply that could not be decoded or does not
// match the request.
func MalformedError(provider, message string, err error) *domain.ProviderError {
	return &domain.ProviderError{
		Provider: provider,
		Kind:     domain.ProviderRejected,
		Message:  message,
		Err:      err,
	}
}

func trimMessage(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxMessageLength {
		return s[:maxMessageLength] + "..."
	}
	return s
}
