package driving

import (
	"context"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

// IngestService runs the ingest pipeline: load documents, chunk them,
// embed the chunks and upsert them into the vector index.
type IngestService interface {
	// Execute runs one full ingest pass and returns the chunks that were
	// indexed. Embedding failures propagate to the caller.
	Execute(ctx context.Context) ([]domain.DocumentChunk, error)
}
