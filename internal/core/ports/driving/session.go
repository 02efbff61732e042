package driving

import (
	"context"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// SessionService manages conversation sessions.
type SessionService interface {
	// Create opens a new session that sees every registered document.
	Create(ctx context.Context) (*domain.SessionInfo, error)

	// Get describes a session.
	Get(ctx context.Context, id string) (*domain.SessionInfo, error)

	// History returns the session's turns, oldest first.
	History(ctx context.Context, id string) ([]domain.Turn, error)

	// Scope restricts a session to documentIDs. A nil slice removes the
	// restriction.
	Scope(ctx context.Context, id string, documentIDs []string) error

	// ClearConversation drops the session's turns, keeping its scope.
	ClearConversation(ctx context.Context, id string) error

	// Delete closes a session.
	Delete(ctx context.Context, id string) error
}
