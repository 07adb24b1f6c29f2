package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1200, cfg.Collector.ChunkSize)
	assert.Equal(t, 200, cfg.Collector.ChunkOverlap)
	assert.Equal(t, 200, cfg.Collector.BulkBatchSize)
	assert.Contains(t, cfg.Collector.FileExtensions, ".txt")
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, "rag-chunks", cfg.Index.ChunkIndexName)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "collector.toml")
		body := `
[collector]
source_folders = ["/data/docs"]
chunk_size = 500
chunk_overlap = 50

[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key = "sk-test"

[index]
host = "http://weaviate:8080"
`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"/data/docs"}, cfg.Collector.SourceFolders)
		assert.Equal(t, 500, cfg.Collector.ChunkSize)
		assert.Equal(t, 50, cfg.Collector.ChunkOverlap)
		// Untouched fields keep their defaults.
		assert.Equal(t, 200, cfg.Collector.BulkBatchSize)
		assert.Equal(t, "openai", cfg.Embedding.Provider)
		assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
		assert.Equal(t, "http://weaviate:8080", cfg.Index.Host)
		assert.Equal(t, "rag-chunks", cfg.Index.ChunkIndexName)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "collector.toml")
		require.NoError(t, os.WriteFile(path, []byte("[collector]\nchunk_size = -1\n"), 0o600))

		_, err := Load(path)
		assert.ErrorContains(t, err, "chunk_size")
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "collector.toml")
		require.NoError(t, os.WriteFile(path, []byte("not toml at all ["), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "collector.toml")

	cfg := Default()
	cfg.Collector.SourceFolders = []string{"/srv/docs"}
	cfg.Collector.ChunkSize = 800
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"overlap equals chunk size", func(c *Config) { c.Collector.ChunkOverlap = c.Collector.ChunkSize }, "chunk_overlap"},
		{"negative overlap", func(c *Config) { c.Collector.ChunkOverlap = -1 }, "chunk_overlap"},
		{"zero batch size", func(c *Config) { c.Collector.BulkBatchSize = 0 }, "bulk_batch_size"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "provider"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.wantErr)
		})
	}
}
