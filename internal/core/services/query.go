package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driven"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driving"
	"github.com/loamlabs/pagesift-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// Default rerank parameters. Free tuning knobs, not derived values; they
// are carried as configuration and overridable per service.
const (
	DefaultRerankMultiplier = 3
	DefaultRerankWeight     = 0.35
)

// QueryService answers similarity queries with an over-fetch-then-rerank
// strategy: fetch more candidates than requested from the vector index,
// then reorder them by a blend of vector distance and lexical overlap.
type QueryService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex

	rerankEnabled    bool
	rerankMultiplier int
	rerankWeight     float64
}

// QueryOption configures the query service.
type QueryOption func(*QueryService)

// WithRerank enables or disables the lexical-overlap rerank.
func WithRerank(enabled bool) QueryOption {
	return func(s *QueryService) {
		s.rerankEnabled = enabled
	}
}

// WithRerankMultiplier sets the over-fetch multiplier: the index is asked
// for topK*multiplier candidates when reranking is enabled.
func WithRerankMultiplier(m int) QueryOption {
	return func(s *QueryService) {
		if m > 0 {
			s.rerankMultiplier = m
		}
	}
}

// WithRerankWeight sets the blend weight in [0,1]. 0 means pure vector
// distance, 1 means pure lexical overlap.
func WithRerankWeight(w float64) QueryOption {
	return func(s *QueryService) {
		if w >= 0 && w <= 1 {
			s.rerankWeight = w
		}
	}
}

// NewQueryService creates a new query service.
func NewQueryService(embedder driven.EmbeddingService, index driven.VectorIndex, opts ...QueryOption) *QueryService {
	s := &QueryService{
		embedder:         embedder,
		index:            index,
		rerankMultiplier: DefaultRerankMultiplier,
		rerankWeight:     DefaultRerankWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute embeds the query, over-fetches candidates and reranks them.
func (s *QueryService) Execute(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d: %w", opts.TopK, domain.ErrInvalidInput)
	}

	logger.Section("Query Execution")
	logger.Debug("Query: %q, topK: %d, filters: %v", query, opts.TopK, opts.Filters)

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	preK := opts.TopK
	if s.rerankEnabled {
		if m := opts.TopK * s.rerankMultiplier; m > preK {
			preK = m
		}
	}
	logger.Debug("Over-fetch: preK=%d (rerank=%t)", preK, s.rerankEnabled)

	results, err := s.index.Query(ctx, embedding, preK, opts.Filters)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Raw candidates: %d", len(results))

	if !s.rerankEnabled || len(results) == 0 {
		return truncate(results, opts.TopK), nil
	}

	reranked := s.rerank(query, results)
	return truncate(reranked, opts.TopK), nil
}

// rerank reorders candidates by a weighted blend of negated vector
// distance and query-token overlap. The raw distance stays on each result;
// only the order changes.
func (s *QueryService) rerank(query string, results []domain.QueryResult) []domain.QueryResult {
	queryTerms := normalizeTerms(query)

	combined := make([]float64, len(results))
	for i, r := range results {
		overlap := overlapScore(queryTerms, displayText(r))
		// The index hands back L2 distance, lower is better; negate so
		// that bigger combined score means better on both axes.
		combined[i] = (1-s.rerankWeight)*(-r.Score) + s.rerankWeight*overlap
	}

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return combined[order[a]] > combined[order[b]]
	})

	reranked := make([]domain.QueryResult, len(results))
	for i, idx := range order {
		reranked[i] = results[idx]
	}
	return reranked
}

// displayText derives the text a result is judged on: its own prose, else
// its rendered tables, else the chunk id.
func displayText(r domain.QueryResult) string {
	if text := strings.TrimSpace(r.Text); text != "" {
		return text
	}
	if rendered := domain.TablesToText(r.Tables); rendered != "" {
		return rendered
	}
	return r.ChunkID
}

// stopTerms are excluded from overlap scoring: function words plus the
// structural labels every embedding text carries (source, page, chunk,
// type, table, text), which would otherwise match everything.
var stopTerms = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"from": {}, "are": {}, "was": {}, "were": {}, "you": {}, "your": {},
	"but": {}, "not": {}, "can": {}, "will": {}, "have": {}, "has": {},
	"had": {}, "all": {}, "any": {},
	"page": {}, "source": {}, "chunk": {}, "type": {}, "table": {}, "text": {},
}

// normalizeTerms tokenizes into lowercase alphanumeric runs, dropping
// short tokens and stop terms.
func normalizeTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := cur.String()
		cur.Reset()
		if len(tok) <= 2 {
			return
		}
		if _, stop := stopTerms[tok]; stop {
			return
		}
		terms[tok] = struct{}{}
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return terms
}

// overlapScore is |query ∩ text| / |query|, 0 when either side is empty.
func overlapScore(queryTerms map[string]struct{}, text string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	textTerms := normalizeTerms(text)
	if len(textTerms) == 0 {
		return 0
	}
	matched := 0
	for term := range queryTerms {
		if _, ok := textTerms[term]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

func truncate(results []domain.QueryResult, topK int) []domain.QueryResult {
	if len(results) > topK {
		return results[:topK]
	}
	return results
}
