package driven

import "github.com/loamlabs/pagesift-cli/internal/core/domain"

// Chunker converts documents into retrievable chunks.
//
// Implementations must be deterministic and side-effect free: chunking the
// same documents twice yields identical chunk sequences. No context is
// taken because chunking performs no I/O.
type Chunker interface {
	// Chunk returns the chunks of all documents, in document order.
	Chunk(documents []domain.Document) ([]domain.DocumentChunk, error)
}
