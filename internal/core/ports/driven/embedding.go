package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, indexing is disabled.
//
// Note: This is separate from VectorStore which persists vectors.
// EmbeddingService generates vectors; VectorStore stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per input text, in input order.
	// Inputs larger than BatchSize are split into sequential requests.
	// Failures are returned as *domain.ProviderError.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// BatchSize returns the maximum number of inputs per provider request.
	BatchSize() int

	// Dimensions returns the embedding vector size (e.g., 768, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
