package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/logger"
	"github.com/custodia-labs/docpilot/internal/postprocessors/chunker"
)

// DocumentRegistry owns the uploaded documents and keeps the document store
// and the vector index in step. Adding a document either stores it with
// every chunk indexed or leaves both untouched.
type DocumentRegistry struct {
	store    driven.DocumentStore
	index    driven.VectorIndex
	embedder *EmbeddingClient
	chunker  *chunker.Processor

	maxDocuments int

	// admission guards pending and the save that turns a slot into a document.
	admission sync.Mutex
	pending   int

	docLocks *keyedMutex

	newID func() string
	now   func() time.Time
}

// NewDocumentRegistry creates a registry holding at most maxDocuments.
func NewDocumentRegistry(
	store driven.DocumentStore,
	index driven.VectorIndex,
	embedder *EmbeddingClient,
	chunks *chunker.Processor,
	maxDocuments int,
) *DocumentRegistry {
	if maxDocuments <= 0 {
		maxDocuments = domain.DefaultMaxDocuments
	}
	return &DocumentRegistry{
		store:        store,
		index:        index,
		embedder:     embedder,
		chunker:      chunks,
		maxDocuments: maxDocuments,
		docLocks:     newKeyedMutex(),
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

// MaxDocuments returns the document cap.
func (r *DocumentRegistry) MaxDocuments() int {
	return r.maxDocuments
}

// admissionSlot is a claimed place below the document cap.
type admissionSlot struct {
	r    *DocumentRegistry
	done bool
}

// reserve claims a slot below the cap. The caller either commits the
// document into it or releases it.
func (r *DocumentRegistry) reserve(ctx context.Context) (*admissionSlot, error) {
	r.admission.Lock()
	defer r.admission.Unlock()

	docs, err := r.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	if len(docs)+r.pending >= r.maxDocuments {
		return nil, fmt.Errorf("%w: at most %d documents can be loaded", domain.ErrCapacityExceeded, r.maxDocuments)
	}
	r.pending++
	return &admissionSlot{r: r}, nil
}

// commit saves doc and frees the slot in one step under the admission
// lock, so the document is never counted both as stored and as pending.
func (s *admissionSlot) commit(ctx context.Context, doc *domain.Document) error {
	s.r.admission.Lock()
	defer s.r.admission.Unlock()

	if err := s.r.store.SaveDocument(ctx, doc); err != nil {
		return err
	}
	s.done = true
	s.r.pending--
	return nil
}

// release frees an uncommitted slot. It is a no-op after commit.
func (s *admissionSlot) release() {
	s.r.admission.Lock()
	defer s.r.admission.Unlock()

	if !s.done {
		s.done = true
		s.r.pending--
	}
}

// AddDocument chunks, embeds and indexes a document and stores it.
// Beyond the cap it fails with domain.ErrCapacityExceeded without side
// effects. Any later failure removes every vector already upserted.
func (r *DocumentRegistry) AddDocument(ctx context.Context, in domain.NewDocument) (*domain.Document, error) {
	logger.Section("Add Document")
	logger.Debug("Filename: %s (%d bytes)", in.Filename, in.SizeBytes)

	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: %s contains no extractable text", domain.ErrInvalidInput, in.Filename)
	}

	slot, err := r.reserve(ctx)
	if err != nil {
		return nil, err
	}
	defer slot.release()

	doc := &domain.Document{
		ID:          r.newID(),
		Filename:    in.Filename,
		SizeBytes:   in.SizeBytes,
		ContentType: in.ContentType,
		Content:     in.Content,
		CreatedAt:   r.now(),
	}

	unlock := r.docLocks.Lock(doc.ID)
	defer unlock()

	if err := r.ingest(ctx, doc); err != nil {
		return nil, err
	}

	// Topics are computed locally and written once with the record.
	doc.Topics = ExtractTopics(doc.Content)
	if err := slot.commit(ctx, doc); err != nil {
		r.rollback(doc.ID)
		return nil, fmt.Errorf("saving document: %w", err)
	}

	logger.Info("Registered %s as %s with %d chunks", doc.Filename, doc.ID, len(doc.ChunkIDs))
	return doc, nil
}

// ingest builds and indexes the chunk set of doc and stores the chunks.
// On failure nothing of doc remains in the index or the store.
func (r *DocumentRegistry) ingest(ctx context.Context, doc *domain.Document) error {
	chunks, err := r.chunker.Process(ctx, doc)
	if err != nil {
		return fmt.Errorf("chunking %s: %w", doc.Filename, err)
	}
	logger.Debug("Split %s into %d chunks", doc.Filename, len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}

	doc.ChunkIDs = make([]string, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		doc.ChunkIDs[i] = chunks[i].ID
	}

	for i := range chunks {
		if err := ctx.Err(); err != nil {
			r.rollback(doc.ID)
			return err
		}
		rec := driven.VectorRecord{ChunkID: chunks[i].ID, DocumentID: doc.ID, Vector: chunks[i].Embedding}
		if err := r.index.Upsert(ctx, rec); err != nil {
			r.rollback(doc.ID)
			return fmt.Errorf("indexing chunk %s: %w", chunks[i].ID, err)
		}
	}

	if err := r.store.SaveChunks(ctx, chunks); err != nil {
		r.rollback(doc.ID)
		return fmt.Errorf("saving chunks: %w", err)
	}
	return nil
}

// rollback removes every trace of a document. It runs detached from the
// request context so a cancelled add is still cleaned up.
func (r *DocumentRegistry) rollback(id string) {
	ctx := context.Background()
	if err := r.index.DeleteByDocument(ctx, id); err != nil {
		logger.Error("rollback of %s: removing vectors: %v", id, err)
	}
	if err := r.store.DeleteDocument(ctx, id); err != nil {
		logger.Error("rollback of %s: removing record: %v", id, err)
	}
	logger.Debug("Rolled back document %s", id)
}

// Reprocess rebuilds the chunk set of a stored document from its content,
// replacing the previous chunks and vectors wholesale.
func (r *DocumentRegistry) Reprocess(ctx context.Context, id string) (*domain.Document, error) {
	logger.Section("Reprocess Document")

	unlock := r.docLocks.Lock(id)
	defer unlock()

	doc, err := r.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	old, err := r.store.GetChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	chunks, err := r.chunker.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", doc.Filename, err)
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	// The new vectors are only written once every embedding is in hand, so
	// a failed reprocess leaves the previous chunk set searchable.
	if err := r.index.DeleteByDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("removing vectors: %w", err)
	}
	doc.ChunkIDs = make([]string, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		doc.ChunkIDs[i] = chunks[i].ID
		rec := driven.VectorRecord{ChunkID: chunks[i].ID, DocumentID: id, Vector: vectors[i]}
		if err := r.index.Upsert(ctx, rec); err != nil {
			r.restore(id, old)
			return nil, fmt.Errorf("indexing chunk %s: %w", chunks[i].ID, err)
		}
	}
	if err := r.store.SaveChunks(ctx, chunks); err != nil {
		r.restore(id, old)
		return nil, fmt.Errorf("saving chunks: %w", err)
	}
	if err := r.store.SaveDocument(ctx, doc); err != nil {
		r.restore(id, old)
		if rerr := r.store.SaveChunks(context.Background(), old); rerr != nil {
			logger.Error("restoring chunks of %s: %v", id, rerr)
		}
		return nil, fmt.Errorf("saving document: %w", err)
	}
	return doc, nil
}

// restore puts a previous chunk set back into the index.
func (r *DocumentRegistry) restore(id string, chunks []domain.Chunk) {
	ctx := context.Background()
	_ = r.index.DeleteByDocument(ctx, id)
	for _, c := range chunks {
		rec := driven.VectorRecord{ChunkID: c.ID, DocumentID: id, Vector: c.Embedding}
		if err := r.index.Upsert(ctx, rec); err != nil {
			logger.Error("restoring chunk %s: %v", c.ID, err)
		}
	}
}

// RemoveDocument deletes a document and all of its vectors.
func (r *DocumentRegistry) RemoveDocument(ctx context.Context, id string) error {
	logger.Section("Remove Document")

	unlock := r.docLocks.Lock(id)
	defer unlock()

	if _, err := r.store.GetDocument(ctx, id); err != nil {
		return err
	}
	if err := r.index.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("removing vectors: %w", err)
	}
	if err := r.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}
	logger.Info("Removed document %s", id)
	return nil
}

// ListDocuments returns every document in insertion order.
func (r *DocumentRegistry) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return r.store.ListDocuments(ctx)
}

// GetDocument returns a document by id.
func (r *DocumentRegistry) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return r.store.GetDocument(ctx, id)
}

// GetChunk returns a chunk by id.
func (r *DocumentRegistry) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	return r.store.GetChunk(ctx, id)
}

// SetDerived writes the summary and topics of a document. The slot can be
// written once; later writes fail with domain.ErrDerivedFrozen. Topics
// extracted at ingestion count as a write of the topics only, so a summary
// can still be added afterwards.
func (r *DocumentRegistry) SetDerived(ctx context.Context, id string, summary *string, topics []string) error {
	unlock := r.docLocks.Lock(id)
	defer unlock()

	doc, err := r.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if summary != nil && doc.Summary != nil {
		return fmt.Errorf("%w: summary of %s", domain.ErrDerivedFrozen, id)
	}
	if topics != nil && doc.Topics != nil {
		return fmt.Errorf("%w: topics of %s", domain.ErrDerivedFrozen, id)
	}
	if summary != nil {
		s := *summary
		doc.Summary = &s
	}
	if topics != nil {
		doc.Topics = append([]string{}, topics...)
	}
	if err := r.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Filenames maps document ids to filenames.
func (r *DocumentRegistry) Filenames(ctx context.Context) (map[string]string, error) {
	docs, err := r.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Filename
	}
	return names, nil
}

// isNotFound reports whether err is a missing entity.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
