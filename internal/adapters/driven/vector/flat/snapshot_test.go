package flat

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

func snapshotPaths(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "vectors.psfv"), filepath.Join(dir, "chunks.db")
}

func populatedIndex(t *testing.T) *Index {
	t.Helper()
	table, err := domain.NewTableRef("doc.pdf:p1:table1",
		[]string{"Name", "Role"}, [][]string{{"alice", "dev"}})
	require.NoError(t, err)

	section := "Intro"
	x := New()
	mustUpsert(t, x,
		[]domain.DocumentChunk{
			{
				ChunkID: "doc.pdf:p1:1",
				Text:    "prose chunk",
				Metadata: domain.ChunkMetadata{
					SourceID: "doc.pdf",
					Page:     1,
					Section:  &section,
					ImageRefs: []domain.ImageRef{
						{Path: "images/fig1.png", Page: 1},
					},
					Extra: map[string]string{
						domain.KeySourceID:  "doc.pdf",
						domain.KeyPage:      "1",
						domain.KeyChunkType: domain.ChunkTypeText,
					},
				},
			},
			{
				ChunkID: table.TableID,
				Metadata: domain.ChunkMetadata{
					SourceID: "doc.pdf",
					Page:     1,
					Extra: map[string]string{
						domain.KeySourceID:  "doc.pdf",
						domain.KeyPage:      "1",
						domain.KeyChunkType: domain.ChunkTypeTable,
					},
				},
				Tables: []domain.TableRef{table},
			},
		},
		[][]float32{{0.5, -1.25, 3}, {2, 0, -0.5}},
	)
	return x
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	indexPath, metadataPath := snapshotPaths(t)

	original := populatedIndex(t)
	require.NoError(t, original.Save(ctx, indexPath, metadataPath))

	restored := New()
	require.NoError(t, restored.Load(ctx, indexPath, metadataPath))

	assert.Equal(t, original.Count(), restored.Count())
	assert.Equal(t, original.Dimensions(), restored.Dimensions())

	// The restored store must answer queries identically.
	query := []float32{0.5, -1.25, 3}
	want, err := original.Query(ctx, query, 2, nil)
	require.NoError(t, err)
	got, err := restored.Query(ctx, query, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Metadata survives the trip, tables included.
	require.Equal(t, "doc.pdf:p1:1", got[0].ChunkID)
	require.NotNil(t, got[0].Metadata.Section)
	assert.Equal(t, "Intro", *got[0].Metadata.Section)
	require.Len(t, got[0].Metadata.ImageRefs, 1)
	assert.Equal(t, "images/fig1.png", got[0].Metadata.ImageRefs[0].Path)
	require.Len(t, got[1].Tables, 1)
	assert.Equal(t, []string{"Name", "Role"}, got[1].Tables[0].Headers)
}

func TestSnapshot_ColdStartOnMissingFiles(t *testing.T) {
	indexPath, metadataPath := snapshotPaths(t)

	x := New()
	require.NoError(t, x.Load(context.Background(), indexPath, metadataPath))
	assert.Equal(t, 0, x.Count())
	assert.Equal(t, 0, x.Dimensions())
}

func TestSnapshot_SaveEmptyIsNoOp(t *testing.T) {
	indexPath, metadataPath := snapshotPaths(t)

	x := New()
	require.NoError(t, x.Save(context.Background(), indexPath, metadataPath))

	_, err := os.Stat(indexPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(metadataPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshot_SaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	indexPath, metadataPath := snapshotPaths(t)

	x := populatedIndex(t)
	require.NoError(t, x.Save(ctx, indexPath, metadataPath))

	mustUpsert(t, x,
		[]domain.DocumentChunk{storedChunk("doc.pdf:p2:1", nil)},
		[][]float32{{1, 1, 1}})
	require.NoError(t, x.Save(ctx, indexPath, metadataPath))

	restored := New()
	require.NoError(t, restored.Load(ctx, indexPath, metadataPath))
	assert.Equal(t, 3, restored.Count())
}

func TestSnapshot_LoadRejectsCountMismatch(t *testing.T) {
	ctx := context.Background()
	indexPath, metadataPath := snapshotPaths(t)

	x := populatedIndex(t)
	require.NoError(t, x.Save(ctx, indexPath, metadataPath))

	// Delete one metadata row so the pair disagrees.
	db, err := sql.Open("sqlite", metadataPath)
	require.NoError(t, err)
	_, err = db.Exec("DELETE FROM chunks WHERE position = 0")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	restored := New()
	err = restored.Load(ctx, indexPath, metadataPath)
	assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
	assert.Equal(t, 0, restored.Count())
}

func TestSnapshot_LoadRejectsBadMagic(t *testing.T) {
	ctx := context.Background()
	indexPath, metadataPath := snapshotPaths(t)

	x := populatedIndex(t)
	require.NoError(t, x.Save(ctx, indexPath, metadataPath))
	require.NoError(t, os.WriteFile(indexPath, []byte("not a vector file, definitely"), 0o600))

	err := New().Load(ctx, indexPath, metadataPath)
	assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
}

func TestSnapshot_LoadRejectsTruncatedVectorFile(t *testing.T) {
	ctx := context.Background()
	indexPath, metadataPath := snapshotPaths(t)

	x := populatedIndex(t)
	require.NoError(t, x.Save(ctx, indexPath, metadataPath))

	data, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(indexPath, data[:len(data)-4], 0o600))

	err = New().Load(ctx, indexPath, metadataPath)
	assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
}
