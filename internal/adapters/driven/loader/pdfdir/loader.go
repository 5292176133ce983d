// Package pdfdir loads every PDF in a directory as page-level documents.
//
// Byte-level PDF parsing stays behind this adapter; the core only sees
// page text. Image extraction is not supported by the underlying library,
// so ImageRefs stay empty here - chunks still carry whatever refs a
// loader provides, this one just provides none.
package pdfdir

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driven"
	"github.com/loamlabs/pagesift-cli/internal/logger"
)

// Ensure Loader implements the port.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader reads *.pdf files from a single directory, sorted by name so
// ingest order is stable across runs.
type Loader struct {
	dataDir string
}

// New creates a loader over the given directory.
func New(dataDir string) *Loader {
	return &Loader{dataDir: dataDir}
}

// Load returns one Document per PDF, pages in order. A directory without
// PDFs yields an empty slice, not an error.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	paths, err := filepath.Glob(filepath.Join(l.dataDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", l.dataDir, err)
	}
	sort.Strings(paths)

	documents := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := loadSingle(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		documents = append(documents, doc)
	}

	logger.Debug("Loaded %d PDF documents from %s", len(documents), l.dataDir)
	return documents, nil
}

func loadSingle(path string) (domain.Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]domain.PageContent, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)

		// Unreadable pages keep their slot with empty text so page
		// numbers in chunk ids stay aligned with the source document.
		text := ""
		if !page.V.IsNull() {
			if extracted, err := page.GetPlainText(nil); err == nil {
				text = extracted
			} else {
				logger.Warn("Page %d of %s: text extraction failed: %v", i, path, err)
			}
		}

		pages = append(pages, domain.PageContent{
			Page: i,
			Text: normalizeExtractedText(text),
		})
	}

	return domain.Document{
		SourceID: filepath.Base(path),
		Pages:    pages,
	}, nil
}

// normalizeExtractedText unifies line endings; the chunker's line scan
// expects plain \n separators.
func normalizeExtractedText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
