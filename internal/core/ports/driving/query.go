package driving

import (
	"context"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

// QueryService answers similarity queries over the ingested corpus.
type QueryService interface {
	// Execute embeds the query, retrieves candidates from the vector
	// index under the given options and returns them ranked, reranked by
	// lexical overlap when enabled.
	Execute(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.QueryResult, error)
}
