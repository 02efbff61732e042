package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/core/ports/driving"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionService = (*SessionManager)(nil)

// SessionManager opens, scopes and closes conversation sessions. Sessions
// are independent; each is addressed by id and serialised by its own lock.
type SessionManager struct {
	store    driven.SessionStore
	registry *DocumentRegistry

	historyLength int
	locks         *keyedMutex

	newID func() string
	now   func() time.Time
}

// NewSessionManager creates a manager keeping historyLength turns per
// session.
func NewSessionManager(store driven.SessionStore, registry *DocumentRegistry, historyLength int) *SessionManager {
	if historyLength <= 0 {
		historyLength = domain.DefaultHistoryLength
	}
	return &SessionManager{
		store:         store,
		registry:      registry,
		historyLength: historyLength,
		locks:         newKeyedMutex(),
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// Lock serialises work on one session and returns the unlock function.
func (m *SessionManager) Lock(id string) func() {
	return m.locks.Lock(id)
}

// Memory returns the conversation memory of a session.
func (m *SessionManager) Memory(sess *domain.Session) *ConversationMemory {
	mem := NewConversationMemory(m.historyLength)
	mem.Restore(sess.Turns)
	return mem
}

// Create opens a new session that sees every registered document.
func (m *SessionManager) Create(ctx context.Context) (*domain.SessionInfo, error) {
	sess, err := m.create(ctx, m.newID())
	if err != nil {
		return nil, err
	}
	return m.info(ctx, sess)
}

func (m *SessionManager) create(ctx context.Context, id string) (*domain.Session, error) {
	now := m.now()
	sess := &domain.Session{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	logger.Debug("Opened session %s", id)
	return sess, nil
}

// Open returns the session with id, creating it when it does not exist.
// An empty id opens a fresh session. Callers hold the session lock.
func (m *SessionManager) Open(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return m.create(ctx, m.newID())
	}
	sess, err := m.store.Get(ctx, id)
	if isNotFound(err) {
		return m.create(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// Save stores a session after a change. Callers hold the session lock.
func (m *SessionManager) Save(ctx context.Context, sess *domain.Session) error {
	sess.UpdatedAt = m.now()
	if err := m.store.Put(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Record appends turns to a session's bounded history and saves it.
// Callers hold the session lock.
func (m *SessionManager) Record(ctx context.Context, sess *domain.Session, turns ...domain.Turn) error {
	mem := m.Memory(sess)
	mem.Append(turns...)
	sess.Turns = mem.Turns()
	return m.Save(ctx, sess)
}

// Get describes a session.
func (m *SessionManager) Get(ctx context.Context, id string) (*domain.SessionInfo, error) {
	unlock := m.Lock(id)
	sess, err := m.store.Get(ctx, id)
	unlock()
	if err != nil {
		return nil, err
	}
	return m.info(ctx, sess)
}

// History returns a session's turns, oldest first.
func (m *SessionManager) History(ctx context.Context, id string) ([]domain.Turn, error) {
	unlock := m.Lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Turns, nil
}

// Scope restricts a session to documentIDs. A nil slice lifts the
// restriction. Every id must name a registered document. When deletions
// empty a scope, the session sees every document again.
func (m *SessionManager) Scope(ctx context.Context, id string, documentIDs []string) error {
	for _, docID := range documentIDs {
		if _, err := m.registry.GetDocument(ctx, docID); err != nil {
			return fmt.Errorf("scoping session to %s: %w", docID, err)
		}
	}

	unlock := m.Lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if documentIDs == nil {
		sess.Scoped = false
		sess.DocumentIDs = nil
	} else {
		sess.Scoped = true
		sess.DocumentIDs = dedupe(documentIDs)
	}
	return m.Save(ctx, sess)
}

// ClearConversation drops a session's turns and keeps its scope.
func (m *SessionManager) ClearConversation(ctx context.Context, id string) error {
	unlock := m.Lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Turns = nil
	return m.Save(ctx, sess)
}

// Delete closes a session.
func (m *SessionManager) Delete(ctx context.Context, id string) error {
	unlock := m.Lock(id)
	defer unlock()

	if _, err := m.store.Get(ctx, id); err != nil {
		return err
	}
	return m.store.Delete(ctx, id)
}

// ForgetDocument removes a deleted document from every session scope. Past
// turns keep the sources they cited.
func (m *SessionManager) ForgetDocument(ctx context.Context, documentID string) error {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	for _, s := range sessions {
		if !slices.Contains(s.DocumentIDs, documentID) {
			continue
		}
		if err := m.forget(ctx, s.ID, documentID); err != nil {
			return err
		}
	}
	return nil
}

func (m *SessionManager) forget(ctx context.Context, id, documentID string) error {
	unlock := m.Lock(id)
	defer unlock()

	sess, err := m.store.Get(ctx, id)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	sess.DocumentIDs = slices.DeleteFunc(sess.DocumentIDs, func(d string) bool { return d == documentID })
	if len(sess.DocumentIDs) == 0 {
		sess.Scoped = false
		sess.DocumentIDs = nil
	}
	return m.Save(ctx, sess)
}

// ActiveDocuments returns the documents a session can see, in upload order.
func (m *SessionManager) ActiveDocuments(ctx context.Context, sess *domain.Session) ([]domain.Document, error) {
	docs, err := m.registry.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Scoped {
		return docs, nil
	}
	active := docs[:0]
	for _, d := range docs {
		if slices.Contains(sess.DocumentIDs, d.ID) {
			active = append(active, d)
		}
	}
	return active, nil
}

func (m *SessionManager) info(ctx context.Context, sess *domain.Session) (*domain.SessionInfo, error) {
	docs, err := m.ActiveDocuments(ctx, sess)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Filename
	}
	return &domain.SessionInfo{
		ID:              sess.ID,
		CreatedAt:       sess.CreatedAt,
		UpdatedAt:       sess.UpdatedAt,
		Scoped:          sess.Scoped,
		DocumentIDs:     sess.DocumentIDs,
		Stats:           statsOf(sess.Turns),
		DocumentsLoaded: len(docs),
		DocumentNames:   names,
	}, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
