// Package textdir loads plain text files as single-page documents.
// Mostly useful for fixtures and corpora that are already extracted.
package textdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driven"
)

// Ensure Loader implements the port.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader reads *.txt files from a directory, one single-page document per
// file, sorted by name.
type Loader struct {
	dataDir string
}

// New creates a loader over the given directory.
func New(dataDir string) *Loader {
	return &Loader{dataDir: dataDir}
}

// Load returns one single-page Document per text file.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	paths, err := filepath.Glob(filepath.Join(l.dataDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", l.dataDir, err)
	}
	sort.Strings(paths)

	documents := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		documents = append(documents, domain.Document{
			SourceID: filepath.Base(path),
			Pages: []domain.PageContent{
				{Page: 1, Text: string(content)},
			},
		})
	}
	return documents, nil
}
