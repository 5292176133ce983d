// Package file provides TOML-backed configuration for the Pagesift CLI.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file looked up inside the working
// directory when no explicit path is given.
const DefaultFileName = "pagesift.toml"

// Config is the application configuration. Zero values are filled with
// defaults by Load, so a partial file is fine and a missing file yields
// pure defaults.
type Config struct {
	// DataDir is where source documents are read from.
	DataDir string `toml:"data_dir"`

	// IndexDir is where the snapshot pair is kept.
	IndexDir string `toml:"index_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding EmbeddingConfig `toml:"embedding"`
}

// ChunkingConfig holds the prose window parameters.
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RetrievalConfig holds the over-fetch-and-rerank parameters. The
// multiplier and weight are shipped defaults, not tuned constants.
type RetrievalConfig struct {
	Rerank           bool    `toml:"rerank"`
	RerankMultiplier int     `toml:"rerank_multiplier"`
	RerankWeight     float64 `toml:"rerank_weight"`
	TopK             int     `toml:"top_k"`
}

// EmbeddingConfig selects and configures the embedding provider.
// API keys never live in the file; they come from the environment
// (OPENAI_API_KEY), optionally via a .env file.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Dimensions overrides the model's default vector width.
	Dimensions int `toml:"dimensions"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DataDir:  "data",
		IndexDir: ".pagesift",
		Chunking: ChunkingConfig{
			ChunkSize:    800,
			ChunkOverlap: 120,
		},
		Retrieval: RetrievalConfig{
			Rerank:           true,
			RerankMultiplier: 3,
			RerankWeight:     0.35,
			TopK:             5,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
		},
	}
}

// Load reads the config file at path. A missing file is not an error; it
// yields Default(). Unset fields in a present file fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// IndexPath returns the vector-artifact path of the snapshot pair.
func (c Config) IndexPath() string {
	return filepath.Join(c.IndexDir, "vectors.psfv")
}

// MetadataPath returns the metadata-artifact path of the snapshot pair.
func (c Config) MetadataPath() string {
	return filepath.Join(c.IndexDir, "chunks.db")
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.IndexDir == "" {
		c.IndexDir = def.IndexDir
	}
	if c.Chunking.ChunkSize <= 0 {
		c.Chunking.ChunkSize = def.Chunking.ChunkSize
	}
	if c.Chunking.ChunkOverlap < 0 {
		c.Chunking.ChunkOverlap = def.Chunking.ChunkOverlap
	}
	if c.Retrieval.RerankMultiplier <= 0 {
		c.Retrieval.RerankMultiplier = def.Retrieval.RerankMultiplier
	}
	if c.Retrieval.RerankWeight < 0 || c.Retrieval.RerankWeight > 1 {
		c.Retrieval.RerankWeight = def.Retrieval.RerankWeight
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = def.Retrieval.TopK
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = def.Embedding.Provider
	}
}
