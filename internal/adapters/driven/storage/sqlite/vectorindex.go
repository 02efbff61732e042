package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/custodia-labs/docpilot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/vector"
)

const metaDimensions = "dimensions"

// vectorIndex persists embeddings in the vectors table and answers queries
// from an in-memory mirror loaded at open. Every write goes to the database
// first and reaches the mirror only once committed.
type vectorIndex struct {
	store  *Store
	mu     sync.Mutex
	mirror *memory.VectorIndex
	// persisted is set once index_meta records the dimensionality.
	persisted bool
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// VectorIndex opens the persistent vector index. dims is the embedder's
// dimensionality; zero accepts whatever the index already holds. It fails
// with domain.ErrDimensionMismatch when the stored vectors were produced by
// an embedder of another size.
func (s *Store) VectorIndex(ctx context.Context, dims int) (driven.VectorIndex, error) {
	stored, err := s.storedDimensions(ctx)
	if err != nil {
		return nil, err
	}
	if stored > 0 && dims > 0 && stored != dims {
		return nil, fmt.Errorf("%w: index holds %d-dimensional vectors, the embedder produces %d; "+
			"delete the documents or switch back to the previous embedding model",
			domain.ErrDimensionMismatch, stored, dims)
	}
	if stored > 0 {
		dims = stored
	}

	mirror := memory.NewVectorIndex(dims)
	rows, err := s.db.QueryContext(ctx, "SELECT chunk_id, document_id, embedding FROM vectors ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec driven.VectorRecord
		var blob []byte
		if err := rows.Scan(&rec.ChunkID, &rec.DocumentID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		if rec.Vector, err = vector.Decode(blob); err != nil {
			return nil, fmt.Errorf("decoding vector of chunk %s: %w", rec.ChunkID, err)
		}
		if err := mirror.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("loading chunk %s: %w", rec.ChunkID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	return &vectorIndex{store: s, mirror: mirror, persisted: stored > 0}, nil
}

func (s *Store) storedDimensions(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", metaDimensions).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading index dimensions: %w", err)
	}
	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing index dimensions %q: %w", value, err)
	}
	return dims, nil
}

// Upsert inserts or replaces the vector for a chunk. A replaced chunk keeps
// its seq and therefore its insertion order.
func (x *vectorIndex) Upsert(ctx context.Context, rec driven.VectorRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	dims := x.mirror.Dimensions()
	if len(rec.Vector) == 0 || (dims > 0 && len(rec.Vector) != dims) {
		return fmt.Errorf("%w: vector has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(rec.Vector), dims)
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vectors (chunk_id, document_id, embedding) VALUES (?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			embedding = excluded.embedding
	`, rec.ChunkID, rec.DocumentID, vector.Encode(rec.Vector))
	if err != nil {
		return fmt.Errorf("saving vector: %w", err)
	}
	if !x.persisted {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO index_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, metaDimensions, strconv.Itoa(len(rec.Vector)))
		if err != nil {
			return fmt.Errorf("saving index dimensions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	x.persisted = true

	return x.mirror.Upsert(ctx, rec)
}

// Delete removes a vector from the index. Missing chunks are ignored.
func (x *vectorIndex) Delete(ctx context.Context, chunkID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, err := x.store.db.ExecContext(ctx, "DELETE FROM vectors WHERE chunk_id = ?", chunkID); err != nil {
		return fmt.Errorf("deleting vector: %w", err)
	}
	return x.mirror.Delete(ctx, chunkID)
}

// DeleteByDocument removes every vector belonging to a document.
func (x *vectorIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, err := x.store.db.ExecContext(ctx, "DELETE FROM vectors WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return x.mirror.DeleteByDocument(ctx, documentID)
}

// Query returns up to k hits ordered by similarity descending.
func (x *vectorIndex) Query(ctx context.Context, query []float32, k int, filter *driven.VectorFilter) ([]driven.VectorHit, error) {
	return x.mirror.Query(ctx, query, k, filter)
}

// Dimensions returns the established dimensionality.
func (x *vectorIndex) Dimensions() int {
	return x.mirror.Dimensions()
}

// Count returns the number of stored vectors.
func (x *vectorIndex) Count(ctx context.Context) (int, error) {
	return x.mirror.Count(ctx)
}

// Close releases the mirror. The database is closed by the Store.
func (x *vectorIndex) Close() error {
	return x.mirror.Close()
}
