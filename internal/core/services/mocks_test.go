package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
)

// mockEmbeddingService implements driven.EmbeddingService for testing.
// By default a text embeds as its letter frequencies.
type mockEmbeddingService struct {
	mu      sync.Mutex
	dims    int
	calls   int
	batches [][]string

	// embedFn overrides the default embedding when set.
	embedFn func(call int, texts []string) ([][]float32, error)
}

func newMockEmbedding() *mockEmbeddingService {
	return &mockEmbeddingService{dims: 26}
}

func letterVector(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.batches = append(m.batches, append([]string(nil), texts...))
	fn := m.embedFn
	m.mu.Unlock()

	if fn != nil {
		return fn(call, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letterVector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEmbeddingService) Dimensions() int              { return m.dims }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	messages [][]driven.ChatMessage

	// chatFn overrides the canned response when set.
	chatFn func(call int, messages []driven.ChatMessage) (string, error)
}

func (m *mockLLMService) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.messages = append(m.messages, messages)
	fn := m.chatFn
	m.mu.Unlock()

	if fn != nil {
		return fn(call, messages)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockLLMService) lastMessages() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// failingVectorIndex wraps an index and fails the n-th upsert.
type failingVectorIndex struct {
	driven.VectorIndex
	mu       sync.Mutex
	upserts  int
	failAt   int
	queryErr error
}

func (f *failingVectorIndex) Upsert(ctx context.Context, rec driven.VectorRecord) error {
	f.mu.Lock()
	f.upserts++
	n := f.upserts
	f.mu.Unlock()
	if f.failAt > 0 && n == f.failAt {
		return domain.ErrDimensionMismatch
	}
	return f.VectorIndex.Upsert(ctx, rec)
}

func (f *failingVectorIndex) Query(ctx context.Context, vec []float32, k int, filter *driven.VectorFilter) ([]driven.VectorHit, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.VectorIndex.Query(ctx, vec, k, filter)
}

// countingVectorIndex counts queries against the wrapped index.
type countingVectorIndex struct {
	driven.VectorIndex
	mu      sync.Mutex
	queries int
}

func (c *countingVectorIndex) Query(ctx context.Context, vec []float32, k int, filter *driven.VectorFilter) ([]driven.VectorHit, error) {
	c.mu.Lock()
	c.queries++
	c.mu.Unlock()
	return c.VectorIndex.Query(ctx, vec, k, filter)
}

// failingDocumentStore wraps a store and fails chosen writes.
type failingDocumentStore struct {
	driven.DocumentStore
	saveDocErr    error
	saveChunksErr error
}

func (f *failingDocumentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if f.saveDocErr != nil {
		return f.saveDocErr
	}
	return f.DocumentStore.SaveDocument(ctx, doc)
}

func (f *failingDocumentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if f.saveChunksErr != nil {
		return f.saveChunksErr
	}
	return f.DocumentStore.SaveChunks(ctx, chunks)
}

// blockingDocumentStore stores a document, reports it on saved and holds
// SaveDocument until proceed is closed.
type blockingDocumentStore struct {
	driven.DocumentStore
	saved   chan string
	proceed chan struct{}
	once    sync.Once
}

func (b *blockingDocumentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if err := b.DocumentStore.SaveDocument(ctx, doc); err != nil {
		return err
	}
	first := false
	b.once.Do(func() { first = true })
	if first {
		b.saved <- doc.ID
		<-b.proceed
	}
	return nil
}
