package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents into the vector index",
	Long: `Loads every PDF from the data directory, chunks pages with table
detection, embeds the chunks and upserts them into the vector index.
The index snapshot is saved when ingest succeeds.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	chunks, err := ingestService.Execute(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if vectorIndex != nil {
		if err := vectorIndex.Save(cmd.Context(), cfg.IndexPath(), cfg.MetadataPath()); err != nil {
			return fmt.Errorf("saving index snapshot: %w", err)
		}
	}

	tables := 0
	for _, chunk := range chunks {
		if chunk.Metadata.Extra[domain.KeyChunkType] == domain.ChunkTypeTable {
			tables++
		}
	}

	cmd.Printf("Ingested %d chunks (%d text, %d table)\n", len(chunks), len(chunks)-tables, tables)
	if vectorIndex != nil {
		cmd.Printf("Index now holds %d chunks\n", vectorIndex.Count())
	}
	return nil
}
