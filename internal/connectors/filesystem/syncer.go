package filesystem

import (
	"context"
	"crypto/sha256"
	"errors"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/logger"
)

// Library is the part of the copilot the syncer drives.
type Library interface {
	Upload(ctx context.Context, files []domain.UploadFile) ([]domain.Document, error)
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// SyncStats counts what a syncer has done.
type SyncStats struct {
	Added   int
	Updated int
	Removed int
	Failed  int
}

// Syncer keeps the registry in step with a watched folder. Files are
// matched to documents by filename, so two files with the same name in
// different subdirectories share one document.
type Syncer struct {
	conn    *Connector
	library Library

	mu     sync.Mutex
	docs   map[string]string // filename -> document ID
	hashes map[string][32]byte
	stats  SyncStats
}

// NewSyncer creates a syncer feeding conn's files into library.
func NewSyncer(conn *Connector, library Library) *Syncer {
	return &Syncer{
		conn:    conn,
		library: library,
		docs:    make(map[string]string),
		hashes:  make(map[string][32]byte),
	}
}

// Stats returns a snapshot of the counters.
func (s *Syncer) Stats() SyncStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Run uploads the files already in the folder, then applies changes until
// ctx is cancelled. Failures on individual files are logged and counted.
func (s *Syncer) Run(ctx context.Context) error {
	logger.Section("Watch")

	if err := s.loadRegistered(ctx); err != nil {
		return err
	}

	changes, err := s.conn.Watch(ctx)
	if err != nil {
		return err
	}

	initial, errs := s.conn.Scan(ctx)
	for change := range initial {
		s.Apply(ctx, change)
	}
	if err := <-errs; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Watching %s", s.conn.Root())

	for change := range changes {
		s.Apply(ctx, change)
	}
	return nil
}

func (s *Syncer) loadRegistered(ctx context.Context) error {
	docs, err := s.library.ListDocuments(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.Filename] = d.ID
	}
	return nil
}

// Apply handles one change. Unchanged content is skipped.
func (s *Syncer) Apply(ctx context.Context, change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := filepath.Base(change.Path)
	id, registered := s.docs[name]

	if change.Type == ChangeDeleted {
		if !registered {
			return
		}
		if err := s.library.DeleteDocument(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.fail(name, err)
			return
		}
		delete(s.docs, name)
		delete(s.hashes, name)
		s.stats.Removed++
		logger.Info("Removed %s", name)
		return
	}

	sum := sha256.Sum256(change.Data)
	if registered {
		if prev, ok := s.hashes[name]; ok && prev == sum {
			return
		}
		if _, ok := s.hashes[name]; !ok && change.Type == ChangeCreated {
			// Registered before this run; the first scan adopts it.
			s.hashes[name] = sum
			return
		}
		if err := s.library.DeleteDocument(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.fail(name, err)
			return
		}
		delete(s.docs, name)
	}

	docs, err := s.library.Upload(ctx, []domain.UploadFile{{Filename: name, Data: change.Data}})
	if err != nil {
		s.fail(name, err)
		return
	}
	s.docs[name] = docs[0].ID
	s.hashes[name] = sum
	if registered {
		s.stats.Updated++
		logger.Info("Re-indexed %s", name)
	} else {
		s.stats.Added++
		logger.Info("Added %s", name)
	}
}

func (s *Syncer) fail(name string, err error) {
	s.stats.Failed++
	logger.Warn("Syncing %s: %v", name, err)
}
