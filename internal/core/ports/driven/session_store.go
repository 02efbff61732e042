package driven

import (
	"context"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// SessionStore holds conversation sessions between requests.
// Entries may expire after an idle period.
type SessionStore interface {
	// Put stores or replaces a session.
	Put(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID. Returns domain.ErrNotFound when absent
	// or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// List returns every live session.
	List(ctx context.Context) ([]*domain.Session, error)
}
