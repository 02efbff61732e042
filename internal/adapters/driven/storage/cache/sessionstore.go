// Package cache provides an expiring session store backed by go-cache.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
)

// DefaultCleanupInterval is how often expired sessions are purged.
const DefaultCleanupInterval = 10 * time.Minute

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in memory and forgets them after ttl without
// activity. Reading a session counts as activity.
type SessionStore struct {
	// mu orders the read and idle-timer refresh in Get against writes, so a
	// refresh never reinstates a session replaced in between.
	mu    sync.Mutex
	cache *gocache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a store whose sessions expire after ttl idle.
// A non-positive ttl uses domain.DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	cleanup := DefaultCleanupInterval
	if ttl < cleanup {
		cleanup = ttl
	}
	return &SessionStore{
		cache: gocache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Put stores or replaces a session and restarts its idle timer.
func (s *SessionStore) Put(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(session.ID, session.Clone(), gocache.DefaultExpiration)
	return nil
}

// Get retrieves a session by ID and restarts its idle timer.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, found := s.cache.Get(id)
	if !found {
		return nil, domain.ErrNotFound
	}
	sess := x.(*domain.Session)
	s.cache.Set(id, sess, gocache.DefaultExpiration)
	return sess.Clone(), nil
}

// Delete removes a session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(id)
	return nil
}

// List returns every live session, oldest first.
func (s *SessionStore) List(_ context.Context) ([]*domain.Session, error) {
	items := s.cache.Items()
	out := make([]*domain.Session, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*domain.Session).Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// TTL returns the idle expiry.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Flush drops every session.
func (s *SessionStore) Flush() {
	s.cache.Flush()
}
