// Package local provides an offline embedding service. Texts are embedded
// by hashing their words into a fixed number of buckets, so related texts
// share dimensions without any model or network access.
package local

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/vector"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hashed-bow"
	DefaultDimensions = 512
)

var tokenPattern = regexp.MustCompile(`\p{L}+|\p{N}+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {}, "then": {},
	"for": {}, "to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "by": {}, "with": {},
	"as": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "it": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "from": {}, "what": {}, "which": {},
	"who": {}, "how": {}, "does": {}, "do": {}, "did": {},
}

// EmbeddingService is a deterministic feature-hashing embedder.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates an embedder producing vectors of the given
// size. Zero selects DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the L2-normalised term-frequency vector of text. Text
// without words embeds to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, s.dimensions)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		// The top bit picks the sign so colliding words tend to cancel.
		if sum>>63 == 1 {
			vec[sum%uint64(s.dimensions)]--
		} else {
			vec[sum%uint64(s.dimensions)]++
		}
	}
	vector.Normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns DefaultModel.
func (s *EmbeddingService) ModelName() string {
	return DefaultModel
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
