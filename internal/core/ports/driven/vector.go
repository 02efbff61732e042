package driven

import "context"

// VectorIndex stores chunk embeddings and answers cosine similarity queries.
//
// The first vector stored fixes the index dimensionality. Later upserts or
// queries of another length fail with domain.ErrDimensionMismatch.
// Implementations must allow concurrent queries alongside mutations.
type VectorIndex interface {
	// Upsert inserts or replaces the vector for a chunk. A replaced chunk
	// keeps its original insertion order.
	Upsert(ctx context.Context, rec VectorRecord) error

	// Delete removes a vector from the index. Missing chunks are ignored.
	Delete(ctx context.Context, chunkID string) error

	// DeleteByDocument removes every vector belonging to a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Query returns up to k hits ordered by similarity descending, ties
	// broken by insertion order. k <= 0 is a domain.ErrConfig.
	Query(ctx context.Context, vector []float32, k int, filter *VectorFilter) ([]VectorHit, error)

	// Dimensions returns the established dimensionality, zero when empty.
	Dimensions() int

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorRecord is a chunk embedding to store.
type VectorRecord struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// DocumentID identifies the parent document.
	DocumentID string

	// Vector is the embedding.
	Vector []float32
}

// VectorFilter restricts a query to a candidate set.
type VectorFilter struct {
	// DocumentIDs limits candidates to these documents. An empty, non-nil
	// slice matches nothing.
	DocumentIDs []string
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the parent document of the chunk.
	DocumentID string

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
