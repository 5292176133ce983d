// Package flat provides an exact, in-memory, brute-force vector index.
//
// Every query computes squared L2 distance against every stored vector.
// That is deliberate: corpora here are a handful of documents, and an
// exact flat scan keeps results reproducible and the store trivial to
// snapshot. Approximate or sharded search is out of scope.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driven"
	"github.com/loamlabs/pagesift-cli/internal/logger"
)

// Ensure Index implements the port.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat exact-search vector store.
//
// It owns two parallel structures: the vector list and the chunk-record
// list. Position i in one always corresponds to position i in the other;
// this positional correspondence is the invariant everything else
// (querying, persistence, the load-time corruption check) relies on.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	records []domain.DocumentChunk
}

// New creates an empty index. The vector width is fixed by the first
// non-empty Upsert.
func New() *Index {
	return &Index{}
}

// Upsert appends chunks with their positionally paired embeddings.
func (x *Index) Upsert(_ context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("upsert: %d chunks but %d embeddings: %w",
			len(chunks), len(embeddings), domain.ErrInvalidInput)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dim
	if dim == 0 {
		dim = len(embeddings[0])
		if dim == 0 {
			return fmt.Errorf("upsert: empty embedding vector: %w", domain.ErrInvalidInput)
		}
	}

	// Validate every width before touching the store, so a failed upsert
	// leaves it unchanged.
	for i, vec := range embeddings {
		if len(vec) != dim {
			return fmt.Errorf("upsert: vector %d has width %d, index is fixed to %d: %w",
				i, len(vec), dim, domain.ErrDimensionMismatch)
		}
	}

	x.dim = dim
	for i := range chunks {
		vec := make([]float32, dim)
		copy(vec, embeddings[i])
		x.vectors = append(x.vectors, vec)
		x.records = append(x.records, chunks[i])
	}

	logger.Debug("Upserted %d chunks (store size %d, dim %d)", len(chunks), len(x.records), x.dim)
	return nil
}

// Query returns up to topK results by ascending squared L2 distance,
// filtered by exact metadata equality. Filtered-out candidates are
// dropped, not replaced.
func (x *Index) Query(_ context.Context, embedding []float32, topK int, filters map[string]string) ([]domain.QueryResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("query: topK must be positive: %w", domain.ErrInvalidInput)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.records) == 0 {
		return []domain.QueryResult{}, nil
	}
	if len(embedding) != x.dim {
		return nil, fmt.Errorf("query: vector has width %d, index is fixed to %d: %w",
			len(embedding), x.dim, domain.ErrDimensionMismatch)
	}

	distances := make([]float64, len(x.vectors))
	order := make([]int, len(x.vectors))
	for i, vec := range x.vectors {
		distances[i] = squaredL2(embedding, vec)
		order[i] = i
	}
	// Stable sort: equal distances keep insertion order, first in wins.
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}

	results := make([]domain.QueryResult, 0, topK)
	for _, idx := range order[:topK] {
		record := x.records[idx]
		if !passesFilters(record, filters) {
			continue
		}
		results = append(results, domain.QueryResult{
			ChunkID:  record.ChunkID,
			Text:     record.Text,
			Metadata: record.Metadata,
			Score:    distances[idx],
			Tables:   record.Tables,
		})
	}
	return results, nil
}

// Count returns the number of stored chunk records.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Dimensions returns the fixed vector width, or 0 before the first upsert.
func (x *Index) Dimensions() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

// Close releases resources. The flat index holds none beyond memory.
func (x *Index) Close() error {
	return nil
}

func passesFilters(record domain.DocumentChunk, filters map[string]string) bool {
	for key, want := range filters {
		if record.Metadata.Extra[key] != want {
			return false
		}
	}
	return true
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
