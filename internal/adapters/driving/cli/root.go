// Package cli provides the cobra commands that drive the application.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/loamlabs/pagesift-cli/internal/adapters/driven/config/file"
	"github.com/loamlabs/pagesift-cli/internal/adapters/driven/embedding/ollama"
	"github.com/loamlabs/pagesift-cli/internal/adapters/driven/embedding/openai"
	"github.com/loamlabs/pagesift-cli/internal/adapters/driven/loader/pdfdir"
	"github.com/loamlabs/pagesift-cli/internal/adapters/driven/vector/flat"
	"github.com/loamlabs/pagesift-cli/internal/chunkers/tableaware"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driven"
	"github.com/loamlabs/pagesift-cli/internal/core/ports/driving"
	"github.com/loamlabs/pagesift-cli/internal/core/services"
	"github.com/loamlabs/pagesift-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

// Injected services. Built by wireServices on first use; tests can
// replace them via SetServices.
var (
	cfg           file.Config
	ingestService driving.IngestService
	queryService  driving.QueryService
	vectorIndex   driven.VectorIndex
	wired         bool
)

// Services bundles the injectable dependencies of the CLI.
type Services struct {
	Config file.Config
	Ingest driving.IngestService
	Query  driving.QueryService
	Index  driven.VectorIndex
}

// SetServices injects pre-built services, bypassing wiring. Useful for
// tests and for embedding the CLI elsewhere.
func SetServices(s Services) {
	cfg = s.Config
	ingestService = s.Ingest
	queryService = s.Query
	vectorIndex = s.Index
	wired = true
}

var rootCmd = &cobra.Command{
	Use:   "pagesift",
	Short: "Table-aware document retrieval",
	Long: `Pagesift ingests page-extracted documents into an exact vector index,
keeping tables as structured data instead of flattened text, and answers
similarity queries with an over-fetch-then-rerank strategy.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", file.DefaultFileName, "path to config file")
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	// Commands that never touch the pipeline skip wiring, so `pagesift
	// version` works without an API key or config file.
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	if wired {
		return nil
	}

	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	loaded, err := file.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	chunker := tableaware.New(
		tableaware.WithChunkSize(cfg.Chunking.ChunkSize),
		tableaware.WithOverlap(cfg.Chunking.ChunkOverlap),
	)
	loader := pdfdir.New(cfg.DataDir)

	index := flat.New()
	if err := index.Load(cmd.Context(), cfg.IndexPath(), cfg.MetadataPath()); err != nil {
		return fmt.Errorf("loading index snapshot: %w", err)
	}
	logger.Debug("Index ready: %d chunks", index.Count())

	vectorIndex = index
	ingestService = services.NewIngestService(loader, chunker, embedder, index)
	queryService = services.NewQueryService(embedder, index,
		services.WithRerank(cfg.Retrieval.Rerank),
		services.WithRerankMultiplier(cfg.Retrieval.RerankMultiplier),
		services.WithRerankWeight(cfg.Retrieval.RerankWeight),
	)
	wired = true
	return nil
}

func buildEmbedder(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	case "openai", "":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
