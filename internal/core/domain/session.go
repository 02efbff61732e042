package domain

import "time"

// Session is one conversation: its turns and the documents it can see.
// Sessions are independent; nothing is shared between them except the
// document registry.
type Session struct {
	// ID is the session identifier.
	ID string

	// Turns is the bounded conversation history, oldest first.
	Turns []Turn

	// Scoped restricts the session to DocumentIDs. When false the
	// session sees every registered document.
	Scoped bool

	// DocumentIDs is the explicit document scope.
	DocumentIDs []string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Turns = append([]Turn(nil), s.Turns...)
	c.DocumentIDs = append([]string(nil), s.DocumentIDs...)
	return &c
}
