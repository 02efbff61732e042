package driving

import (
	"context"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// CopilotService is the document question-answering surface.
type CopilotService interface {
	// Upload extracts, chunks, embeds and registers files. Files are
	// processed in order; the first failure stops the upload and is returned
	// together with the documents registered before it.
	Upload(ctx context.Context, files []domain.UploadFile) ([]domain.Document, error)

	// ListDocuments returns registered documents in upload order.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetDocument returns a registered document.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document from the registry, the index and
	// every session scope.
	DeleteDocument(ctx context.Context, id string) error

	// Ask answers message from the documents visible to the session.
	// An empty sessionID opens a new session.
	Ask(ctx context.Context, sessionID, message string) (*domain.Answer, error)

	// GetSummary asks for a summary of the session's documents.
	GetSummary(ctx context.Context, sessionID string) (*domain.Answer, error)

	// GetComparison compares the session's documents. It needs at least
	// two documents.
	GetComparison(ctx context.Context, sessionID string) (*domain.ComparisonReport, error)

	// GetInsights derives statistics and suggestions from all documents.
	GetInsights(ctx context.Context) (*domain.Insights, error)

	// Analyze returns statistics for one document.
	Analyze(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error)
}
