package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T, rows [][]string) TableRef {
	t.Helper()
	table, err := NewTableRef("doc.pdf:p1:table1", []string{"Name", "Role"}, rows)
	require.NoError(t, err)
	return table
}

func textChunk(text string) DocumentChunk {
	return DocumentChunk{
		ChunkID: "doc.pdf:p2:1",
		Text:    text,
		Metadata: ChunkMetadata{
			SourceID: "doc.pdf",
			Page:     2,
			Extra: map[string]string{
				KeySourceID:  "doc.pdf",
				KeyPage:      "2",
				KeyChunkType: ChunkTypeText,
			},
		},
	}
}

func TestTableToText(t *testing.T) {
	table := sampleTable(t, [][]string{{"alice", "dev"}, {"bob", "ops"}})

	got := TableToText(table)

	assert.Equal(t, "Name | Role\nalice | dev\nbob | ops", got)
}

func TestTableToText_RowCap(t *testing.T) {
	var rows [][]string
	for i := 0; i < TableTextRowCap+3; i++ {
		rows = append(rows, []string{"n", "r"})
	}
	table := sampleTable(t, rows)

	got := TableToText(table)

	// Header line plus at most TableTextRowCap data rows.
	assert.Len(t, strings.Split(got, "\n"), 1+TableTextRowCap)
}

func TestChunkEmbeddingText_Prose(t *testing.T) {
	got := ChunkEmbeddingText(textChunk("Some prose content."))

	assert.True(t, strings.HasPrefix(got, "Some prose content."))
	assert.Contains(t, got, "source_id: doc.pdf | page: 2 | chunk_type: text")
}

func TestChunkEmbeddingText_Table(t *testing.T) {
	table := sampleTable(t, [][]string{{"alice", "dev"}})
	chunk := DocumentChunk{
		ChunkID: table.TableID,
		Metadata: ChunkMetadata{
			SourceID: "doc.pdf",
			Page:     1,
			Extra:    map[string]string{KeyChunkType: ChunkTypeTable},
		},
		Tables: []TableRef{table},
	}

	got := ChunkEmbeddingText(chunk)

	assert.Contains(t, got, "Name | Role")
	assert.Contains(t, got, "chunk_type: table")
}

func TestChunkEmbeddingText_FallsBackToChunkID(t *testing.T) {
	chunk := DocumentChunk{
		ChunkID:  "doc.pdf:p3:1",
		Metadata: ChunkMetadata{SourceID: "doc.pdf", Page: 3, Extra: map[string]string{}},
	}

	got := ChunkEmbeddingText(chunk)

	// Never empty: alignment between chunk list and embedding list
	// depends on every chunk producing some text.
	assert.True(t, strings.HasPrefix(got, "doc.pdf:p3:1"))
}

func TestChunkQueryText_FirstLine(t *testing.T) {
	got := ChunkQueryText(textChunk("\n\n  First real line\nsecond line"))

	assert.Equal(t, "First real line", got)
}

func TestChunkQueryText_CapsLength(t *testing.T) {
	got := ChunkQueryText(textChunk(strings.Repeat("x", 500)))

	assert.Len(t, got, QueryTextMaxChars)
}
