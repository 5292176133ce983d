package tableaware

import (
	"fmt"
	"strconv"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

func proseChunkID(sourceID string, page, n int) string {
	return fmt.Sprintf("%s:p%d:%d", sourceID, page, n)
}

func tableChunkID(sourceID string, page, k int) string {
	return fmt.Sprintf("%s:p%d:table%d", sourceID, page, k)
}

// proseChunk materialises the n-th prose window of a page. Every chunk of
// a page carries the page's full image list; images are not partitioned.
func proseChunk(sourceID string, page domain.PageContent, n int, text string) domain.DocumentChunk {
	return domain.DocumentChunk{
		ChunkID: proseChunkID(sourceID, page.Page, n),
		Text:    text,
		Metadata: domain.ChunkMetadata{
			SourceID:  sourceID,
			Page:      page.Page,
			ImageRefs: page.ImageRefs,
			Extra: map[string]string{
				domain.KeySourceID:  sourceID,
				domain.KeyPage:      strconv.Itoa(page.Page),
				domain.KeyChunkType: domain.ChunkTypeText,
			},
		},
	}
}

// tableChunk materialises a table chunk. Text stays empty; the structured
// table is the content.
func tableChunk(sourceID string, page domain.PageContent, table domain.TableRef) domain.DocumentChunk {
	return domain.DocumentChunk{
		ChunkID: table.TableID,
		Text:    "",
		Metadata: domain.ChunkMetadata{
			SourceID:  sourceID,
			Page:      page.Page,
			ImageRefs: page.ImageRefs,
			Extra: map[string]string{
				domain.KeySourceID:  sourceID,
				domain.KeyPage:      strconv.Itoa(page.Page),
				domain.KeyChunkType: domain.ChunkTypeTable,
			},
		},
		Tables: []domain.TableRef{table},
	}
}
