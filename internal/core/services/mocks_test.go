package services

import (
	"context"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	documents []domain.Document
	loadErr   error
}

func (m *mockLoader) Load(_ context.Context) ([]domain.Document, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.documents, nil
}

// mockChunker implements driven.Chunker for testing.
type mockChunker struct {
	chunks   []domain.DocumentChunk
	chunkErr error
	gotDocs  []domain.Document
}

func (m *mockChunker) Chunk(documents []domain.Document) ([]domain.DocumentChunk, error) {
	m.gotDocs = documents
	if m.chunkErr != nil {
		return nil, m.chunkErr
	}
	return m.chunks, nil
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	queryVec  []float32
	batchVecs [][]float32
	embedErr  error
	gotQuery  string
	gotTexts  []string
}

func (m *mockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	m.gotQuery = text
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.queryVec, nil
}

func (m *mockEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	m.gotTexts = texts
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.batchVecs != nil {
		return m.batchVecs, nil
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{float32(i), 0}
	}
	return vecs, nil
}

func (m *mockEmbedder) Dimensions() int  { return 2 }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Close() error      { return nil }

// mockIndex implements driven.VectorIndex for testing.
type mockIndex struct {
	results    []domain.QueryResult
	queryErr   error
	upsertErr  error
	gotTopK    int
	gotFilters map[string]string
	gotChunks  []domain.DocumentChunk
	gotVecs    [][]float32
}

func (m *mockIndex) Upsert(_ context.Context, chunks []domain.DocumentChunk, embeddings [][]float32) error {
	m.gotChunks = chunks
	m.gotVecs = embeddings
	return m.upsertErr
}

func (m *mockIndex) Query(_ context.Context, _ []float32, topK int, filters map[string]string) ([]domain.QueryResult, error) {
	m.gotTopK = topK
	m.gotFilters = filters
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK < len(m.results) {
		return m.results[:topK], nil
	}
	return m.results, nil
}

func (m *mockIndex) Save(_ context.Context, _, _ string) error { return nil }
func (m *mockIndex) Load(_ context.Context, _, _ string) error { return nil }
func (m *mockIndex) Count() int                                { return len(m.results) }
func (m *mockIndex) Close() error                              { return nil }

func proseChunk(id, text string) domain.DocumentChunk {
	return domain.DocumentChunk{
		ChunkID: id,
		Text:    text,
		Metadata: domain.ChunkMetadata{
			SourceID: "doc.pdf",
			Page:     1,
			Extra: map[string]string{
				domain.KeySourceID:  "doc.pdf",
				domain.KeyPage:      "1",
				domain.KeyChunkType: domain.ChunkTypeText,
			},
		},
	}
}
