package driven

import (
	"context"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

// VectorIndex stores chunk records with their embedding vectors and answers
// exact nearest-neighbour queries under optional metadata filters.
//
// The index owns both the vector store and the chunk-record list; the n-th
// stored vector and the n-th record always refer to the same chunk. Upsert
// mutates both halves non-atomically, so concurrent mutation is undefined
// behaviour unless the implementation adds its own locking.
type VectorIndex interface {
	// Upsert appends chunks and their positionally paired embeddings.
	// Both slices must have equal length; empty input is a no-op. The
	// vector width is fixed by the first non-empty call and a later call
	// with a different width fails with domain.ErrDimensionMismatch.
	// Records are appended as-is: re-upserting a chunk id duplicates it.
	Upsert(ctx context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error

	// Query returns up to topK results ordered by ascending squared L2
	// distance, ties broken by insertion order. Filters are applied to
	// the selected candidates; failing candidates are dropped, not
	// replaced, so fewer than topK results may come back. An empty store
	// returns an empty slice.
	Query(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]domain.QueryResult, error)

	// Save writes the two-artifact snapshot: the vector structure to
	// indexPath and the ordered chunk-record list to metadataPath. The
	// files are a pair and are meaningless independently. Saving an
	// uninitialised store is a no-op.
	Save(ctx context.Context, indexPath, metadataPath string) error

	// Load restores a snapshot. A missing file at either path leaves the
	// store empty and returns nil (cold start). A record/vector count
	// mismatch between the two artifacts fails with
	// domain.ErrCorruptSnapshot.
	Load(ctx context.Context, indexPath, metadataPath string) error

	// Count returns the number of stored chunk records.
	Count() int

	// Close releases resources.
	Close() error
}
