package domain

import (
	"fmt"
	"strings"
)

// TableTextRowCap bounds how many data rows TableToText renders.
// Enough for the embedder to see the table's shape without flooding it.
const TableTextRowCap = 5

// QueryTextMaxChars bounds the representative query text of a chunk.
const QueryTextMaxChars = 200

// TableToText renders a table to compact text for embedding and reranking:
// the header row, then up to TableTextRowCap data rows, cells joined with
// " | ". Blank headers and blank rows are filtered out.
func TableToText(table TableRef) string {
	var headerCells []string
	for _, h := range table.Headers {
		if s := strings.TrimSpace(h); s != "" {
			headerCells = append(headerCells, s)
		}
	}
	header := strings.Join(headerCells, " | ")

	var rowLines []string
	for i, row := range table.Rows {
		if i >= TableTextRowCap {
			break
		}
		cells := make([]string, 0, len(table.Headers))
		for _, h := range table.Headers {
			cells = append(cells, strings.TrimSpace(row[h]))
		}
		line := strings.Join(cells, " | ")
		if strings.TrimSpace(line) != "" {
			rowLines = append(rowLines, line)
		}
	}

	parts := make([]string, 0, 2)
	if header != "" {
		parts = append(parts, header)
	}
	if len(rowLines) > 0 {
		parts = append(parts, strings.Join(rowLines, "\n"))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// TablesToText renders all non-empty tables of a chunk, separated by
// blank lines.
func TablesToText(tables []TableRef) string {
	var rendered []string
	for _, t := range tables {
		if s := TableToText(t); s != "" {
			rendered = append(rendered, s)
		}
	}
	return strings.TrimSpace(strings.Join(rendered, "\n\n"))
}

// ChunkEmbeddingText builds a non-empty text representation of a chunk for
// embedding. Prose chunks embed their text, table chunks embed the rendered
// table; a chunk with neither falls back to its id so the embedding list
// stays aligned with the chunk list.
func ChunkEmbeddingText(chunk DocumentChunk) string {
	meta := fmt.Sprintf("source_id: %s | page: %d | chunk_type: %s",
		chunk.Metadata.SourceID, chunk.Metadata.Page, chunkType(chunk))

	if text := strings.TrimSpace(chunk.Text); text != "" {
		return text + "\n\n" + meta
	}
	if rendered := TablesToText(chunk.Tables); rendered != "" {
		return rendered + "\n\n" + meta
	}
	return chunk.ChunkID + "\n\n" + meta
}

// ChunkQueryText derives a short representative query from chunk content
// (not metadata), used when generating evaluation questions for a corpus.
func ChunkQueryText(chunk DocumentChunk) string {
	if text := strings.TrimSpace(chunk.Text); text != "" {
		return firstLine(text, QueryTextMaxChars)
	}
	if rendered := TablesToText(chunk.Tables); rendered != "" {
		return firstLine(rendered, QueryTextMaxChars)
	}
	return fmt.Sprintf("%s p%d %s", chunk.Metadata.SourceID, chunk.Metadata.Page, chunkType(chunk))
}

// firstLine returns the first non-blank line of text capped at max bytes,
// or the capped text itself when every line is blank.
func firstLine(text string, max int) string {
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return truncate(s, max)
		}
	}
	return truncate(text, max)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func chunkType(chunk DocumentChunk) string {
	if t := chunk.Metadata.Extra[KeyChunkType]; t != "" {
		return t
	}
	return ChunkTypeText
}
