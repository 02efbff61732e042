package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no extractor can read.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfig indicates an invalid configuration value, such as a chunk
	// overlap that is not smaller than the chunk size or a non-positive top-k.
	ErrConfig = errors.New("config error")

	// ErrCapacityExceeded indicates the document registry is full.
	// The rejected add leaves the registry and the index untouched.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// dimensionality of the index. This is a fatal configuration error.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmbeddingProvider indicates the embedding provider failed.
	// It is always combined with one of the provider subkinds below.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrGeneration indicates the language model failed to produce an answer.
	// It is always combined with one of the provider subkinds below.
	ErrGeneration = errors.New("generation error")

	// ErrDerivedFrozen indicates the summary/topics slot of a document was
	// already written.
	ErrDerivedFrozen = errors.New("derived data already set")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Provider subkinds.

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates the provider rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates the provider could not be reached or returned
	// a server error.
	ErrUnavailable = errors.New("unavailable")

	// ErrTimeout indicates a provider call exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrRejected indicates the provider refused the request as malformed.
	ErrRejected = errors.New("rejected")
)

// ProviderErrorKind classifies a provider failure.
type ProviderErrorKind string

// Provider error kinds.
const (
	ProviderRateLimited  ProviderErrorKind = "rate_limited"
	ProviderUnauthorized ProviderErrorKind = "unauthorized"
	ProviderUnavailable  ProviderErrorKind = "unavailable"
	ProviderTimeout      ProviderErrorKind = "timeout"
	ProviderRejected     ProviderErrorKind = "rejected"
)

// ProviderError carries structured detail about a failed call to an
// embedding or generation provider.
type ProviderError struct {
	// Provider names the backend, e.g. "openai".
	Provider string

	// Kind classifies the failure.
	Kind ProviderErrorKind

	// StatusCode is the HTTP status, zero for transport failures.
	StatusCode int

	// RetryAfter is the delay requested by the provider, zero when absent.
	RetryAfter time.Duration

	// Message is the provider's error text.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches the subkind sentinel for this error's kind.
func (e *ProviderError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Retryable reports whether the call may succeed if repeated.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case ProviderRateLimited, ProviderUnavailable, ProviderTimeout:
		return true
	default:
		return false
	}
}

func (k ProviderErrorKind) sentinel() error {
	switch k {
	case ProviderRateLimited:
		return ErrRateLimited
	case ProviderUnauthorized:
		return ErrUnauthorized
	case ProviderUnavailable:
		return ErrUnavailable
	case ProviderTimeout:
		return ErrTimeout
	case ProviderRejected:
		return ErrRejected
	default:
		return nil
	}
}

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable()
	}
	return false
}

// RetryAfter returns the provider-requested retry delay carried by err.
func RetryAfter(err error) time.Duration {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.RetryAfter
	}
	return 0
}

// Error kinds reported to callers of the query surface.
const (
	KindConfig            = "config_error"
	KindCapacityExceeded  = "capacity_exceeded"
	KindEmbeddingProvider = "embedding_provider_error"
	KindGeneration        = "generation_error"
	KindDimensionMismatch = "dimension_mismatch"
	KindNotFound          = "not_found"
	KindInvalidInput      = "invalid_input"
	KindInternal          = "internal"
)

// ErrorKind maps err onto the short kind string used by the CLI, the REST
// API and the MCP server.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, ErrEmbeddingProvider):
		return KindEmbeddingProvider
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedType):
		return KindInvalidInput
	default:
		return KindInternal
	}
}
