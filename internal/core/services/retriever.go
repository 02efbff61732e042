package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Retriever finds the chunks most similar to a query among a set of
// documents.
type Retriever struct {
	embedder *EmbeddingClient
	index    driven.VectorIndex
	store    driven.DocumentStore

	// MinSimilarity drops results scoring below it. Zero or less disables
	// the threshold.
	MinSimilarity float64
}

// NewRetriever creates a retriever without a similarity threshold.
func NewRetriever(embedder *EmbeddingClient, index driven.VectorIndex, store driven.DocumentStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

// Retrieve returns up to topK chunks of the active documents ordered by
// score descending, ties in insertion order. An empty active set returns no
// results without embedding the query.
func (r *Retriever) Retrieve(ctx context.Context, query string, active []string, topK int) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")

	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrConfig, topK)
	}
	if len(active) == 0 {
		logger.Debug("No active documents, skipping retrieval")
		return []domain.RetrievalResult{}, nil
	}

	vec, err := r.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := r.index.Query(ctx, vec, topK, &driven.VectorFilter{DocumentIDs: active})
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	logger.Debug("Index returned %d hits over %d documents", len(hits), len(active))

	seen := make(map[string]bool, len(hits))
	filenames := make(map[string]string)
	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		if seen[hit.ChunkID] {
			continue
		}
		seen[hit.ChunkID] = true

		if r.MinSimilarity > 0 && hit.Similarity < r.MinSimilarity {
			logger.Debug("Dropping %s: similarity %.3f below %.3f", hit.ChunkID, hit.Similarity, r.MinSimilarity)
			continue
		}

		chunk, err := r.store.GetChunk(ctx, hit.ChunkID)
		if isNotFound(err) {
			// Removed between the index query and hydration.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading chunk %s: %w", hit.ChunkID, err)
		}

		name, ok := filenames[hit.DocumentID]
		if !ok {
			doc, err := r.store.GetDocument(ctx, hit.DocumentID)
			if isNotFound(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("loading document %s: %w", hit.DocumentID, err)
			}
			name = doc.Filename
			filenames[hit.DocumentID] = name
		}

		results = append(results, domain.RetrievalResult{
			ChunkID:    hit.ChunkID,
			DocumentID: hit.DocumentID,
			Filename:   name,
			Content:    chunk.Content,
			Position:   chunk.Position,
			Score:      hit.Similarity,
		})
	}

	// The index already orders hits; the stable sort keeps its tie order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
