package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Embedding client defaults.
const (
	DefaultEmbedBatchSize   = 64
	DefaultEmbedAttempts    = 4
	DefaultEmbedCallTimeout = 30 * time.Second
)

// EmbeddingClient turns text into fixed-size vectors through an embedding
// provider. It batches requests, retries transient failures and checks every
// reply for count and dimensionality.
type EmbeddingClient struct {
	provider driven.EmbeddingService

	// BatchSize is the maximum number of texts sent in one provider call.
	BatchSize int

	// MaxAttempts bounds the calls made for one batch.
	MaxAttempts int

	// CallTimeout applies to each provider call.
	CallTimeout time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewEmbeddingClient creates a client with default batching and retries.
func NewEmbeddingClient(provider driven.EmbeddingService) *EmbeddingClient {
	return &EmbeddingClient{
		provider:    provider,
		BatchSize:   DefaultEmbedBatchSize,
		MaxAttempts: DefaultEmbedAttempts,
		CallTimeout: DefaultEmbedCallTimeout,
	}
}

// Dimensions returns the dimensionality of every vector the client returns.
func (c *EmbeddingClient) Dimensions() int {
	return c.provider.Dimensions()
}

// ModelName returns the provider model name.
func (c *EmbeddingClient) ModelName() string {
	return c.provider.ModelName()
}

// Embed returns one vector per text, in input order. All failures wrap
// domain.ErrEmbeddingProvider. If ctx is cancelled between batches the
// completed batches are discarded and the context error is returned.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	size := c.BatchSize
	if size <= 0 {
		size = DefaultEmbedBatchSize
	}
	policy := retryPolicy{
		attempts:    c.MaxAttempts,
		callTimeout: c.CallTimeout,
		provider:    c.provider.ModelName(),
		sleep:       c.sleep,
	}
	dims := c.provider.Dimensions()

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+size, len(texts))
		batch := texts[start:end]
		logger.Debug("Embedding batch %d-%d of %d", start, end, len(texts))

		var reply [][]float32
		err := policy.do(ctx, func(callCtx context.Context) error {
			var err error
			reply, err = c.provider.EmbedBatch(callCtx, batch)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
		}

		if len(reply) != len(batch) {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, &domain.ProviderError{
				Provider: policy.provider,
				Kind:     domain.ProviderRejected,
				Message:  fmt.Sprintf("returned %d vectors for %d texts", len(reply), len(batch)),
			})
		}
		for i, vec := range reply {
			if dims > 0 && len(vec) != dims {
				return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
					domain.ErrDimensionMismatch, start+i, len(vec), dims)
			}
			if len(vec) == 0 {
				return nil, fmt.Errorf("%w: empty vector for text %d", domain.ErrDimensionMismatch, start+i)
			}
		}
		vectors = append(vectors, reply...)
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (c *EmbeddingClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
