// Package file loads collector configuration from a TOML file.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file looked up when no path is given.
const DefaultFileName = "collector.toml"

// Config is the full collector configuration.
type Config struct {
	Collector CollectorConfig `toml:"collector"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
}

// CollectorConfig controls enumeration and chunking.
type CollectorConfig struct {
	// SourceFolders are the roots scanned for documents.
	SourceFolders []string `toml:"source_folders"`

	// FileExtensions restricts which files are processed.
	FileExtensions []string `toml:"file_extensions"`

	// ChunkSize is the chunk size in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between chunks in characters.
	ChunkOverlap int `toml:"chunk_overlap"`

	// BulkBatchSize bounds bulk writes to the index backend.
	BulkBatchSize int `toml:"bulk_batch_size"`

	// WatchDebounceSeconds is the quiet period before a changed file
	// is reprocessed in watch mode.
	WatchDebounceSeconds int `toml:"watch_debounce_seconds"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKey authenticates against hosted providers.
	APIKey string `toml:"api_key"`

	// Dimensions is the embedding vector size.
	Dimensions int `toml:"dimensions"`
}

// IndexConfig configures the document index backend.
type IndexConfig struct {
	// Host is the Weaviate endpoint.
	Host string `toml:"host"`

	// APIKey authenticates against hosted instances.
	APIKey string `toml:"api_key"`

	// ChunkIndexName is the chunk collection name.
	ChunkIndexName string `toml:"chunk_index_name"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Collector: CollectorConfig{
			FileExtensions:       []string{".pdf", ".docx", ".xlsx", ".pptx", ".txt", ".csv", ".md"},
			ChunkSize:            1200,
			ChunkOverlap:         200,
			BulkBatchSize:        200,
			WatchDebounceSeconds: 2,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
		},
		Index: IndexConfig{
			Host:           "http://localhost:8080",
			ChunkIndexName: "rag-chunks",
		},
	}
}

// Load reads the config from path, falling back to defaults for absent
// fields. An empty path looks for collector.toml in the working
// directory; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultFileName
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the collector cannot run with.
func (c *Config) Validate() error {
	if c.Collector.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Collector.ChunkSize)
	}
	if c.Collector.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative, got %d", c.Collector.ChunkOverlap)
	}
	if c.Collector.ChunkOverlap >= c.Collector.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Collector.ChunkOverlap, c.Collector.ChunkSize)
	}
	if c.Collector.BulkBatchSize <= 0 {
		return fmt.Errorf("bulk_batch_size must be positive, got %d", c.Collector.BulkBatchSize)
	}
	switch c.Embedding.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	return nil
}
