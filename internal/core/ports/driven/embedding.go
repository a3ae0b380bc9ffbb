package driven

import "context"

// EmbeddingService turns chunk text into vectors for the vector store.
// Every vector an index holds must come from the same model, so
// Dimensions is fixed for the life of a service.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns exactly one vector per text, in the order given.
	// A failure for any text fails the whole call; callers that need
	// per-item isolation retry with Embed.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length. Unknown models fall back to the
	// adapter's configured or default size.
	Dimensions() int

	ModelName() string

	// Ping issues the cheapest request that proves the provider answers
	// with the configured credentials.
	Ping(ctx context.Context) error

	Close() error
}
