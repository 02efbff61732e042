package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
)

func upsert(t *testing.T, idx *VectorIndex, chunkID, docID string, vec ...float32) {
	t.Helper()
	require.NoError(t, idx.Upsert(context.Background(), driven.VectorRecord{
		ChunkID: chunkID, DocumentID: docID, Vector: vec,
	}))
}

func TestVectorIndex_IdenticalVectorRanksFirst(t *testing.T) {
	idx := NewVectorIndex(0)
	upsert(t, idx, "a_0", "a", 1, 0, 0)
	upsert(t, idx, "a_1", "a", 0.7, 0.7, 0)
	upsert(t, idx, "b_0", "b", 0, 0, 1)

	hits, err := idx.Query(context.Background(), []float32{0.7, 0.7, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a_1", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.GreaterOrEqual(t, hits[1].Similarity, hits[2].Similarity)
}

func TestVectorIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx := NewVectorIndex(2)
	for i := 0; i < 5; i++ {
		upsert(t, idx, fmt.Sprintf("d_%d", i), "d", 1, 1)
	}
	// Re-upserting keeps the original slot
	upsert(t, idx, "d_0", "d", 1, 1)

	hits, err := idx.Query(context.Background(), []float32{1, 1}, 5, nil)
	require.NoError(t, err)
	for i, hit := range hits {
		assert.Equal(t, fmt.Sprintf("d_%d", i), hit.ChunkID)
	}
}

func TestVectorIndex_KClamped(t *testing.T) {
	idx := NewVectorIndex(0)
	upsert(t, idx, "a_0", "a", 1, 0)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = idx.Query(context.Background(), []float32{1, 0}, 0, nil)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestVectorIndex_Filter(t *testing.T) {
	idx := NewVectorIndex(0)
	upsert(t, idx, "a_0", "a", 1, 0)
	upsert(t, idx, "b_0", "b", 1, 0)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 5, &driven.VectorFilter{DocumentIDs: []string{"b", "b"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b_0", hits[0].ChunkID)
	assert.Equal(t, "b", hits[0].DocumentID)

	hits, err = idx.Query(context.Background(), []float32{1, 0}, 5, &driven.VectorFilter{DocumentIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	idx := NewVectorIndex(0)
	upsert(t, idx, "a_0", "a", 1, 0, 0)

	err := idx.Upsert(context.Background(), driven.VectorRecord{ChunkID: "a_1", DocumentID: "a", Vector: []float32{1, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = idx.Query(context.Background(), []float32{1, 0}, 1, nil)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	fixed := NewVectorIndex(4)
	err = fixed.Upsert(context.Background(), driven.VectorRecord{ChunkID: "x", DocumentID: "x", Vector: []float32{1}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 4, fixed.Dimensions())
}

func TestVectorIndex_DeleteByDocument(t *testing.T) {
	idx := NewVectorIndex(0)
	ctx := context.Background()
	upsert(t, idx, "a_0", "a", 1, 0)
	upsert(t, idx, "a_1", "a", 0, 1)
	upsert(t, idx, "b_0", "b", 1, 1)

	require.NoError(t, idx.DeleteByDocument(ctx, "a"))
	require.NoError(t, idx.Delete(ctx, "missing"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := idx.Query(ctx, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b_0", hits[0].ChunkID)

	require.NoError(t, idx.Delete(ctx, "b_0"))
	hits, err = idx.Query(ctx, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_ConcurrentReadsAndWrites(t *testing.T) {
	idx := NewVectorIndex(2)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = idx.Upsert(ctx, driven.VectorRecord{ChunkID: fmt.Sprintf("c_%d", n), DocumentID: "c", Vector: []float32{1, float32(n)}})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = idx.Query(ctx, []float32{1, 1}, 3, nil)
		}()
	}
	wg.Wait()

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
