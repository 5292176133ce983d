package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The service is consumed, never implemented, by the core. Calls are
// blocking request/response with no partial results; the service adds no
// retry of its own, and cancellation is limited to what the context and
// the underlying HTTP client provide.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// EmbedQuery generates an embedding for a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates one embedding per input text, order-preserving,
	// all vectors the same width.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
