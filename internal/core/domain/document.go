package domain

// Chunk type values carried in ChunkMetadata.Extra under KeyChunkType.
const (
	ChunkTypeText  = "text"
	ChunkTypeTable = "table"
)

// Well-known metadata keys present in every chunk's Extra bag.
// Query-time filters match against these with exact string equality.
const (
	KeySourceID  = "source_id"
	KeyPage      = "page"
	KeyChunkType = "chunk_type"
)

// ImageRef points at an image extracted alongside a page.
// The core never interprets it; it is carried through to results unchanged.
type ImageRef struct {
	// Path is where the extracted image was written.
	Path string

	// Page is the 1-based page the image came from.
	Page int

	// Caption is optional descriptive text, when the extractor found one.
	Caption *string
}

// PageContent is the extracted text of a single page plus its image refs.
type PageContent struct {
	// Page is 1-based.
	Page int

	// Text is the raw extracted page text, tables still inline.
	Text string

	// ImageRefs lists images found on this page.
	ImageRefs []ImageRef
}

// Document is one source file rendered as a sequence of pages.
type Document struct {
	// SourceID identifies the originating file (typically the file name).
	SourceID string

	// Pages in page order.
	Pages []PageContent
}

// ChunkMetadata describes where a chunk came from.
type ChunkMetadata struct {
	// SourceID identifies the originating document.
	SourceID string

	// Page is the 1-based page the chunk was cut from.
	Page int

	// Section is an optional section heading, when known.
	Section *string

	// ImageRefs is the full image list of the chunk's page.
	// Images are not partitioned per chunk.
	ImageRefs []ImageRef

	// Extra is the filterable key-value bag. It always carries
	// source_id, page and chunk_type.
	Extra map[string]string
}

// DocumentChunk is a retrievable unit derived from one page: either a
// window of prose text, or exactly one structured table with empty Text.
type DocumentChunk struct {
	// ChunkID is globally unique and deterministic:
	// "{source}:p{page}:{n}" for prose, "{source}:p{page}:table{k}" for tables.
	ChunkID string

	// Text is the prose content. Empty for table chunks.
	Text string

	// Metadata describes the chunk's origin.
	Metadata ChunkMetadata

	// Tables holds the structured tables, normally zero or one.
	Tables []TableRef
}

// IsTable reports whether the chunk carries structured table data.
func (c DocumentChunk) IsTable() bool {
	return len(c.Tables) > 0
}

// QueryResult is a single similarity hit. It is constructed only by the
// vector index at query time and never mutated after return.
type QueryResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// Text is the chunk's prose content (empty for table chunks).
	Text string

	// Metadata is the matched chunk's metadata.
	Metadata ChunkMetadata

	// Score is the raw squared L2 distance from the index.
	// Lower is more similar. Reranking does not overwrite it.
	Score float64

	// Tables are the matched chunk's structured tables.
	Tables []TableRef
}
