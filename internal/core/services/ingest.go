package services

import (
	"context"
	"fmt"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driven"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driving"
	"github.com/loamlabs/pagesift-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingest pipeline:
// load -> chunk -> embed -> upsert.
type IngestService struct {
	loader   driven.DocumentLoader
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewIngestService creates a new ingest service. All dependencies are
// required.
func NewIngestService(
	loader driven.DocumentLoader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *IngestService {
	return &IngestService{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

// Execute runs one full ingest pass and returns the chunks that were
// indexed. Embedding failures are not retried here; they propagate
// wrapped to the caller.
func (s *IngestService) Execute(ctx context.Context) ([]domain.DocumentChunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	logger.Section("Ingest")

	documents, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	logger.Info("Loaded %d documents", len(documents))

	chunks, err := s.chunker.Chunk(documents)
	if err != nil {
		return nil, fmt.Errorf("chunk documents: %w", err)
	}
	logger.Info("Chunked into %d chunks", len(chunks))

	if len(chunks) == 0 {
		return chunks, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = domain.ChunkEmbeddingText(chunk)
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks: %w",
			len(embeddings), len(chunks), domain.ErrInvalidInput)
	}

	if err := s.index.Upsert(ctx, chunks, embeddings); err != nil {
		return nil, fmt.Errorf("upsert chunks: %w", err)
	}

	logger.Info("Indexed %d chunks", len(chunks))
	return chunks, nil
}
