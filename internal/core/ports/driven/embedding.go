package driven

import "context"

// EmbeddingService turns text into fixed-size vectors. It only produces
// vectors; VectorIndex keeps and searches them, and both must agree on
// Dimensions. Provider failures surface as *domain.ProviderError.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is fixed by the model.
	Dimensions() int

	ModelName() string

	// Ping makes the cheapest request that proves the provider answers.
	Ping(ctx context.Context) error

	Close() error
}
