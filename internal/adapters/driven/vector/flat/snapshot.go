package flat

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
	"github.com/loamlabs/pagesift-cli/internal/logger"
)

// Vector artifact header: magic, format version, dimension, vector count,
// then count*dim little-endian float32 values.
var vectorMagic = [4]byte{'P', 'S', 'F', 'V'}

const vectorFormatVersion = 1

const headerSize = 4 + 4 + 4 + 4

const metadataSchema = `
CREATE TABLE IF NOT EXISTS snapshot_info (
	id           TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	dimension    INTEGER NOT NULL,
	vector_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	position   INTEGER PRIMARY KEY,
	chunk_id   TEXT NOT NULL,
	text       TEXT NOT NULL,
	source_id  TEXT NOT NULL,
	page       INTEGER NOT NULL,
	section    TEXT,
	image_refs TEXT NOT NULL,
	extra      TEXT NOT NULL,
	tables     TEXT NOT NULL
);
`

// Save writes the two-artifact snapshot: the flat vector structure to
// indexPath and the ordered chunk-record list to a SQLite database at
// metadataPath. Saving an uninitialised store is a no-op.
//
// The artifacts are only meaningful as a pair: record i in the metadata
// database describes vector i in the index file.
func (x *Index) Save(ctx context.Context, indexPath, metadataPath string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.dim == 0 {
		logger.Debug("Save skipped: index never initialised")
		return nil
	}

	for _, p := range []string{indexPath, metadataPath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("creating snapshot directory: %w", err)
			}
		}
	}

	snapshotID := uuid.New().String()
	if err := x.saveMetadata(ctx, metadataPath, snapshotID); err != nil {
		return fmt.Errorf("writing metadata snapshot: %w", err)
	}
	if err := x.saveVectors(indexPath); err != nil {
		return fmt.Errorf("writing vector snapshot: %w", err)
	}

	logger.Info("Saved snapshot %s: %d vectors, dim %d", snapshotID, len(x.vectors), x.dim)
	return nil
}

// Load restores a snapshot pair. A missing file at either path leaves the
// store empty and returns nil: that is the designed cold-start path, not
// an error. A record/vector count mismatch is corruption.
func (x *Index) Load(ctx context.Context, indexPath, metadataPath string) error {
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		logger.Debug("No vector snapshot at %s, starting cold", indexPath)
		return nil
	}
	if _, err := os.Stat(metadataPath); os.IsNotExist(err) {
		logger.Debug("No metadata snapshot at %s, starting cold", metadataPath)
		return nil
	}

	dim, vectors, err := readVectorFile(indexPath)
	if err != nil {
		return fmt.Errorf("reading vector snapshot: %w", err)
	}

	records, recordedCount, err := readMetadata(ctx, metadataPath)
	if err != nil {
		return fmt.Errorf("reading metadata snapshot: %w", err)
	}

	if len(records) != len(vectors) || recordedCount != len(vectors) {
		return fmt.Errorf("metadata holds %d records (header says %d) but index holds %d vectors: %w",
			len(records), recordedCount, len(vectors), domain.ErrCorruptSnapshot)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.dim = dim
	x.vectors = vectors
	x.records = records

	logger.Info("Loaded snapshot: %d vectors, dim %d", len(vectors), dim)
	return nil
}

func (x *Index) saveVectors(path string) error {
	buf := make([]byte, headerSize+len(x.vectors)*x.dim*4)
	copy(buf[0:4], vectorMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], vectorFormatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(x.dim))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(x.vectors)))

	off := headerSize
	for _, vec := range x.vectors {
		for _, f := range vec {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}

	// Write-then-rename so a crash mid-write never leaves a torn file
	// next to a metadata database that references it.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readVectorFile(path string) (int, [][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	if len(data) < headerSize {
		return 0, nil, fmt.Errorf("file too short (%d bytes): %w", len(data), domain.ErrCorruptSnapshot)
	}
	if [4]byte(data[0:4]) != vectorMagic {
		return 0, nil, fmt.Errorf("bad magic: %w", domain.ErrCorruptSnapshot)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != vectorFormatVersion {
		return 0, nil, fmt.Errorf("unsupported format version %d: %w", v, domain.ErrCorruptSnapshot)
	}

	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint32(data[12:16]))
	if dim <= 0 {
		return 0, nil, fmt.Errorf("non-positive dimension %d: %w", dim, domain.ErrCorruptSnapshot)
	}
	if len(data) != headerSize+count*dim*4 {
		return 0, nil, fmt.Errorf("payload is %d bytes, header promises %d: %w",
			len(data)-headerSize, count*dim*4, domain.ErrCorruptSnapshot)
	}

	vectors := make([][]float32, count)
	off := headerSize
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}

func (x *Index) saveMetadata(ctx context.Context, path, snapshotID string) error {
	db, err := openMetadataDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Snapshots replace, never merge.
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_info"); err != nil {
		return fmt.Errorf("clearing snapshot info: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshot_info (id, created_at, dimension, vector_count) VALUES (?, ?, ?, ?)",
		snapshotID, time.Now().UTC().Format(time.RFC3339), x.dim, len(x.records))
	if err != nil {
		return fmt.Errorf("inserting snapshot info: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, chunk_id, text, source_id, page, section, image_refs, extra, tables)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range x.records {
		imageRefs, err := json.Marshal(record.Metadata.ImageRefs)
		if err != nil {
			return fmt.Errorf("marshal image refs for %s: %w", record.ChunkID, err)
		}
		extra, err := json.Marshal(record.Metadata.Extra)
		if err != nil {
			return fmt.Errorf("marshal extra for %s: %w", record.ChunkID, err)
		}
		tables, err := json.Marshal(record.Tables)
		if err != nil {
			return fmt.Errorf("marshal tables for %s: %w", record.ChunkID, err)
		}

		var section sql.NullString
		if record.Metadata.Section != nil {
			section = sql.NullString{String: *record.Metadata.Section, Valid: true}
		}

		_, err = stmt.ExecContext(ctx, i, record.ChunkID, record.Text,
			record.Metadata.SourceID, record.Metadata.Page, section,
			string(imageRefs), string(extra), string(tables))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", record.ChunkID, err)
		}
	}

	return tx.Commit()
}

func readMetadata(ctx context.Context, path string) ([]domain.DocumentChunk, int, error) {
	db, err := openMetadataDB(path)
	if err != nil {
		return nil, 0, err
	}
	defer db.Close()

	var recordedCount int
	row := db.QueryRowContext(ctx, "SELECT vector_count FROM snapshot_info")
	if err := row.Scan(&recordedCount); err != nil {
		return nil, 0, fmt.Errorf("reading snapshot info: %w", domain.ErrCorruptSnapshot)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT chunk_id, text, source_id, page, section, image_refs, extra, tables
		FROM chunks ORDER BY position`)
	if err != nil {
		return nil, 0, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentChunk
	for rows.Next() {
		var (
			record    domain.DocumentChunk
			section   sql.NullString
			imageRefs string
			extra     string
			tables    string
		)
		err := rows.Scan(&record.ChunkID, &record.Text, &record.Metadata.SourceID,
			&record.Metadata.Page, &section, &imageRefs, &extra, &tables)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning chunk row: %w", err)
		}
		if section.Valid {
			record.Metadata.Section = &section.String
		}
		if err := json.Unmarshal([]byte(imageRefs), &record.Metadata.ImageRefs); err != nil {
			return nil, 0, fmt.Errorf("unmarshal image refs for %s: %w", record.ChunkID, err)
		}
		if err := json.Unmarshal([]byte(extra), &record.Metadata.Extra); err != nil {
			return nil, 0, fmt.Errorf("unmarshal extra for %s: %w", record.ChunkID, err)
		}
		if err := json.Unmarshal([]byte(tables), &record.Tables); err != nil {
			return nil, 0, fmt.Errorf("unmarshal tables for %s: %w", record.ChunkID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating chunk rows: %w", err)
	}

	return records, recordedCount, nil
}

func openMetadataDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening metadata database: %w", err)
	}
	if _, err := db.Exec(metadataSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return db, nil
}
