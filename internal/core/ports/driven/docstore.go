package driven

import (
	"context"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// DocumentStore keeps registered documents and their chunks. Lookups of
// missing IDs return domain.ErrNotFound.
type DocumentStore interface {
	// SaveDocument inserts or replaces by ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks is ordered by chunk position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListDocuments is ordered by registration time.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteChunks drops a document's chunks but keeps the document row,
	// which is how re-indexing starts.
	DeleteChunks(ctx context.Context, documentID string) error

	// DeleteDocument drops the document together with its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
