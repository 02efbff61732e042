package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
	"github.com/custodia-labs/docpilot/internal/vector"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type entry struct {
	seq        uint64
	documentID string
	vec        []float32
	norm       float64
}

// VectorIndex is an exact cosine similarity index held in memory.
// Queries scan every candidate; reads run concurrently and writes are
// serialised.
type VectorIndex struct {
	mu      sync.RWMutex
	dims    int
	nextSeq uint64
	entries map[string]*entry
	byDoc   map[string]map[string]struct{}
}

// NewVectorIndex creates an empty index. A positive dims fixes the
// dimensionality up front; zero lets the first upsert decide.
func NewVectorIndex(dims int) *VectorIndex {
	return &VectorIndex{
		dims:    dims,
		entries: make(map[string]*entry),
		byDoc:   make(map[string]map[string]struct{}),
	}
}

// Upsert inserts or replaces the vector for a chunk.
func (x *VectorIndex) Upsert(_ context.Context, rec driven.VectorRecord) error {
	if len(rec.Vector) == 0 {
		return fmt.Errorf("%w: empty vector for chunk %s", domain.ErrDimensionMismatch, rec.ChunkID)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dims == 0 {
		x.dims = len(rec.Vector)
	}
	if len(rec.Vector) != x.dims {
		return fmt.Errorf("%w: vector has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(rec.Vector), x.dims)
	}

	vec := append([]float32(nil), rec.Vector...)
	if old, ok := x.entries[rec.ChunkID]; ok {
		if old.documentID != rec.DocumentID {
			x.unlink(rec.ChunkID, old.documentID)
		}
		old.documentID = rec.DocumentID
		old.vec = vec
		old.norm = vector.Magnitude(vec)
	} else {
		x.nextSeq++
		x.entries[rec.ChunkID] = &entry{
			seq:        x.nextSeq,
			documentID: rec.DocumentID,
			vec:        vec,
			norm:       vector.Magnitude(vec),
		}
	}

	ids, ok := x.byDoc[rec.DocumentID]
	if !ok {
		ids = make(map[string]struct{})
		x.byDoc[rec.DocumentID] = ids
	}
	ids[rec.ChunkID] = struct{}{}
	return nil
}

// Delete removes a vector from the index.
func (x *VectorIndex) Delete(_ context.Context, chunkID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if e, ok := x.entries[chunkID]; ok {
		x.unlink(chunkID, e.documentID)
		delete(x.entries, chunkID)
	}
	return nil
}

// DeleteByDocument removes every vector belonging to a document.
func (x *VectorIndex) DeleteByDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for chunkID := range x.byDoc[documentID] {
		delete(x.entries, chunkID)
	}
	delete(x.byDoc, documentID)
	return nil
}

func (x *VectorIndex) unlink(chunkID, documentID string) {
	ids := x.byDoc[documentID]
	delete(ids, chunkID)
	if len(ids) == 0 {
		delete(x.byDoc, documentID)
	}
}

// Query returns up to k hits ordered by similarity descending, ties broken
// by insertion order.
func (x *VectorIndex) Query(_ context.Context, query []float32, k int, filter *driven.VectorFilter) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrConfig, k)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, nil
	}
	if len(query) != x.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), x.dims)
	}

	qn := vector.Magnitude(query)
	type scored struct {
		hit driven.VectorHit
		seq uint64
	}
	var candidates []scored
	visit := func(chunkID string, e *entry) {
		candidates = append(candidates, scored{
			hit: driven.VectorHit{
				ChunkID:    chunkID,
				DocumentID: e.documentID,
				Similarity: vector.CosineWithNorms(query, e.vec, qn, e.norm),
			},
			seq: e.seq,
		})
	}

	if filter == nil {
		for chunkID, e := range x.entries {
			visit(chunkID, e)
		}
	} else {
		seen := make(map[string]bool, len(filter.DocumentIDs))
		for _, docID := range filter.DocumentIDs {
			if seen[docID] {
				continue
			}
			seen[docID] = true
			for chunkID := range x.byDoc[docID] {
				visit(chunkID, x.entries[chunkID])
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hit.Similarity != candidates[j].hit.Similarity {
			return candidates[i].hit.Similarity > candidates[j].hit.Similarity
		}
		return candidates[i].seq < candidates[j].seq
	})

	k = min(k, len(candidates))
	hits := make([]driven.VectorHit, k)
	for i := range hits {
		hits[i] = candidates[i].hit
	}
	return hits, nil
}

// Dimensions returns the established dimensionality.
func (x *VectorIndex) Dimensions() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dims
}

// Count returns the number of stored vectors.
func (x *VectorIndex) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Close releases resources.
func (x *VectorIndex) Close() error {
	return nil
}
