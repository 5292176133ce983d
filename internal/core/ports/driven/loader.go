package driven

import (
	"context"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

// DocumentLoader produces documents from some corpus: a directory of PDFs,
// plain text files, or anything else that can be rendered as pages.
//
// Byte-level parsing and image extraction live behind this port; the core
// only ever sees page text plus opaque image references.
type DocumentLoader interface {
	// Load reads the corpus and returns one Document per source file,
	// pages in order. An empty corpus is not an error.
	Load(ctx context.Context) ([]domain.Document, error)
}
