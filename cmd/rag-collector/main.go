// Command rag-collector scans source folders, chunks and embeds
// document text and keeps a vector index in sync with the file system.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jklebucki/rag-collector/internal/adapters/driven/config/file"
	"github.com/jklebucki/rag-collector/internal/adapters/driven/embedding/ollama"
	"github.com/jklebucki/rag-collector/internal/adapters/driven/embedding/openai"
	"github.com/jklebucki/rag-collector/internal/adapters/driven/fs"
	"github.com/jklebucki/rag-collector/internal/adapters/driven/index/weaviate"
	"github.com/jklebucki/rag-collector/internal/adapters/driving/cli"
	"github.com/jklebucki/rag-collector/internal/chunkers/office"
	"github.com/jklebucki/rag-collector/internal/chunkers/pdf"
	"github.com/jklebucki/rag-collector/internal/chunkers/sentence"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// The config path is needed before cobra parses flags, because the
	// services built from it are injected into the commands up front.
	cfg, err := file.Load(configPathFromArgs(os.Args[1:]))
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	index, err := weaviate.New(weaviate.Config{
		Host:           cfg.Index.Host,
		APIKey:         cfg.Index.APIKey,
		ChunkIndexName: cfg.Index.ChunkIndexName,
	})
	if err != nil {
		return err
	}

	chunking := services.NewChunkingService(
		pdf.New(),
		office.New(),
		sentence.New(),
	)
	indexer := services.NewIndexer(embedder, index,
		services.WithBulkBatchSize(cfg.Collector.BulkBatchSize))
	detector := services.NewChangeDetector(index)
	cleanup := services.NewCleanupService(index, detector, fs.NewChecker())

	collector := services.NewCollector(
		fs.NewEnumerator(),
		[]driven.ContentExtractor{fs.NewPlainTextExtractor()},
		chunking,
		indexer,
		detector,
		cfg.Collector.SourceFolders,
		cfg.Collector.FileExtensions,
		services.WithChunkParams(cfg.Collector.ChunkSize, cfg.Collector.ChunkOverlap),
		services.WithCleanup(cleanup),
	)

	watcher := fs.NewWatcher(
		cfg.Collector.SourceFolders,
		cfg.Collector.FileExtensions,
		time.Duration(cfg.Collector.WatchDebounceSeconds)*time.Second,
	)

	cli.SetVersion(version)
	cli.SetCollector(collector)
	cli.SetIndexer(indexer)
	cli.SetCleanupService(cleanup)
	cli.SetWatchConfig(&cli.WatchConfig{Watcher: watcher, Cleanup: cleanup})

	return cli.Execute(ctx)
}

// configPathFromArgs extracts --config from raw arguments.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if path, ok := strings.CutPrefix(arg, "--config="); ok {
			return path
		}
	}
	return ""
}

func buildEmbedder(cfg *file.Config) (driven.EmbeddingProvider, error) {
	switch cfg.Embedding.Provider {
	case "ollama":
		return ollama.NewProvider(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	case "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires api_key")
		}
		return openai.NewProvider(openai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
