// Package tableaware provides a chunker that separates tabular content
// from prose before windowing.
//
// PDF text extraction renders tables as space-aligned token rows inside
// the page text. A plain fixed-size splitter cuts straight through them,
// so half a table lands in one chunk and half in the next. This chunker
// classifies lines first: runs of table-like lines become structured
// TableRef chunks, everything else becomes overlapping prose windows.
package tableaware

import (
	"strings"
	"sync/atomic"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driven"
	"github.com/loamlabs/pagesift-cli/internal/logger"
)

// DefaultChunkSize is the default number of characters per prose window.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive prose windows.
const DefaultChunkOverlap = 120

// Tabular-line heuristic bounds. A line qualifies as table-like when it is
// longer than minTabularLineLen after trimming, splits into at least
// minTabularTokens whitespace-separated tokens, and no token reaches
// maxTokenLen characters.
const (
	minTabularTokens  = 2
	maxTokenLen       = 100
	minTabularLineLen = 10
)

// Ensure Chunker implements the port.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits page text into prose windows and structured table chunks.
type Chunker struct {
	chunkSize int
	overlap   int

	// dropped counts table blocks that looked tabular but failed
	// validation and were discarded. Their lines are not returned to the
	// surrounding prose; the counter keeps the loss observable.
	dropped atomic.Uint64
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the prose window size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between prose windows in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a table-aware chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// DroppedBlocks returns how many invalid table blocks have been discarded
// over the lifetime of this chunker.
func (c *Chunker) DroppedBlocks() uint64 {
	return c.dropped.Load()
}

// Chunk converts documents into chunks, one pass per page. Deterministic:
// the same documents always produce the same chunk sequence.
func (c *Chunker) Chunk(documents []domain.Document) ([]domain.DocumentChunk, error) {
	var chunks []domain.DocumentChunk
	for _, doc := range documents {
		for _, page := range doc.Pages {
			chunks = append(chunks, c.chunkPage(doc.SourceID, page)...)
		}
	}
	return chunks, nil
}

// segment is one region of a page in document order: either a prose
// section or a parsed table.
type segment struct {
	text  string
	table *domain.TableRef
}

// pageScan carries the per-page counters through the line scan, so the
// chunker itself holds no mutable per-page state.
type pageScan struct {
	sourceID   string
	page       int
	tableCount int
	segments   []segment
}

func (c *Chunker) chunkPage(sourceID string, page domain.PageContent) []domain.DocumentChunk {
	scan := c.scanLines(sourceID, page.Page, strings.Split(page.Text, "\n"))

	var chunks []domain.DocumentChunk
	proseCount := 0
	for _, seg := range scan.segments {
		if seg.table != nil {
			chunks = append(chunks, tableChunk(sourceID, page, *seg.table))
			continue
		}
		for _, window := range c.splitText(seg.text) {
			proseCount++
			chunks = append(chunks, proseChunk(sourceID, page, proseCount, window))
		}
	}
	return chunks
}

// scanLines walks the page top to bottom, peeling table blocks out of the
// prose. A block opens only when two consecutive lines are tabular, so a
// single aligned line inside prose stays prose. An open block ends at the
// first blank line (consumed and excluded) or the first non-tabular line
// (kept, starts the next prose run).
func (c *Chunker) scanLines(sourceID string, page int, lines []string) pageScan {
	scan := pageScan{sourceID: sourceID, page: page}
	var prose []string

	flushProse := func() {
		section := strings.TrimSpace(strings.Join(prose, "\n"))
		if section != "" {
			scan.segments = append(scan.segments, segment{text: section})
		}
		prose = prose[:0]
	}

	i := 0
	for i < len(lines) {
		if !isTabular(lines[i]) || i+1 >= len(lines) || !isTabular(lines[i+1]) {
			prose = append(prose, lines[i])
			i++
			continue
		}

		flushProse()

		start := i
		for i < len(lines) && isTabular(lines[i]) {
			i++
		}
		block := lines[start:i]
		if i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			// The terminating blank line belongs to neither side.
			i++
		}

		scan.tableCount++
		tableID := tableChunkID(sourceID, page, scan.tableCount)
		table, ok := parseTable(tableID, block)
		if !ok {
			// The block's lines are lost, not demoted to prose. Matches
			// the source heuristic; the counter makes the loss visible.
			scan.tableCount--
			c.dropped.Add(1)
			logger.Warn("Dropped malformed table block: %s page %d (%d lines)",
				sourceID, page, len(block))
			continue
		}
		scan.segments = append(scan.segments, segment{table: &table})
	}
	flushProse()

	return scan
}

// isTabular reports whether a line looks like a table row: several
// whitespace-separated tokens of sane width on a line of non-trivial
// length. A heuristic classifier, not a parser.
func isTabular(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) <= minTabularLineLen {
		return false
	}
	tokens := strings.Fields(trimmed)
	if len(tokens) < minTabularTokens {
		return false
	}
	for _, tok := range tokens {
		if len([]rune(tok)) >= maxTokenLen {
			return false
		}
	}
	return true
}

// smartSplit tokenizes a header or data row. Visually aligned PDF columns
// come out as runs of two or more spaces, so those runs win when present;
// otherwise the line splits on single whitespace.
func smartSplit(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if !strings.Contains(trimmed, "  ") {
		return strings.Fields(trimmed)
	}

	var tokens []string
	for _, part := range splitOnSpaceRuns(trimmed) {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// splitOnSpaceRuns splits on runs of 2+ spaces, trimming each part.
func splitOnSpaceRuns(s string) []string {
	var parts []string
	var cur strings.Builder
	spaces := 0
	for _, r := range s {
		if r == ' ' {
			spaces++
			continue
		}
		if spaces >= 2 && cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		} else if spaces > 0 && cur.Len() > 0 {
			cur.WriteRune(' ')
		}
		spaces = 0
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// parseTable builds a TableRef from a block of tabular lines. The first
// line is the header, the rest are data rows padded or truncated to the
// header width.
func parseTable(tableID string, block []string) (domain.TableRef, bool) {
	if len(block) < 2 {
		return domain.TableRef{}, false
	}

	headers := smartSplit(block[0])
	if len(headers) < minTabularTokens {
		return domain.TableRef{}, false
	}

	rawRows := make([][]string, 0, len(block)-1)
	for _, line := range block[1:] {
		rawRows = append(rawRows, smartSplit(line))
	}

	table, err := domain.NewTableRef(tableID, headers, rawRows)
	if err != nil {
		return domain.TableRef{}, false
	}
	return table, true
}

// splitText cuts a prose section into overlapping windows. Consecutive
// windows share exactly overlap characters, so concatenating them with
// the overlap removed reconstructs the section.
func (c *Chunker) splitText(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.chunkSize {
		return []string{text}
	}

	step := c.chunkSize - c.overlap
	windows := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return windows
}
