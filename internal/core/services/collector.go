package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure Collector implements the interface.
var _ driving.Collector = (*Collector)(nil)

// ProgressLogInterval is how many processed files between progress
// log lines during a collection pass.
const ProgressLogInterval = 50

// Collector drives a full collection pass: enumerate files, skip the
// unchanged ones, extract, chunk, index, record the outcome, and
// finally reconcile orphaned index entries. Per-file failures never
// abort the pass.
type Collector struct {
	enumerator driven.FileEnumerator
	extractors map[string]driven.ContentExtractor
	chunking   driving.ChunkingService
	indexer    driving.Indexer
	detector   driving.ChangeDetector
	cleanup    driving.CleanupService

	roots      []string
	extensions []string
	chunkSize  int
	overlap    int
}

// CollectorOption configures the collector.
type CollectorOption func(*Collector)

// WithChunkParams overrides the default chunk size and overlap.
func WithChunkParams(chunkSize, overlap int) CollectorOption {
	return func(c *Collector) {
		if chunkSize > 0 {
			c.chunkSize = chunkSize
		}
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithCleanup enables the orphan reconciliation step after a pass.
func WithCleanup(cleanup driving.CleanupService) CollectorOption {
	return func(c *Collector) {
		c.cleanup = cleanup
	}
}

// NewCollector creates a collector over the given source folders and
// file extensions. Extractors are keyed by the extensions they
// support; a file with no registered extractor is indexed from
// whatever content enumeration already attached.
func NewCollector(
	enumerator driven.FileEnumerator,
	extractors []driven.ContentExtractor,
	chunking driving.ChunkingService,
	indexer driving.Indexer,
	detector driving.ChangeDetector,
	roots, extensions []string,
	opts ...CollectorOption,
) *Collector {
	byExt := make(map[string]driven.ContentExtractor)
	for _, ex := range extractors {
		for _, ext := range ex.SupportedExtensions() {
			byExt[strings.ToLower(ext)] = ex
		}
	}
	c := &Collector{
		enumerator: enumerator,
		extractors: byExt,
		chunking:   chunking,
		indexer:    indexer,
		detector:   detector,
		roots:      roots,
		extensions: extensions,
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes every matching file under the configured roots once,
// then reconciles orphans. It refuses to start when the embedding
// provider or the index backend is unreachable.
func (c *Collector) Run(ctx context.Context) (*driving.RunSummary, error) {
	if !c.indexer.EnsureReady(ctx) {
		return nil, fmt.Errorf("indexing infrastructure is not ready")
	}
	if err := c.detector.EnsureMetadataIndex(ctx); err != nil {
		// Not fatal: lookups against a missing collection read as
		// unknown, which defaults to reindex.
		logger.Warn("Could not ensure metadata index: %v", err)
	}

	summary := &driving.RunSummary{}
	start := time.Now()

	logger.Info("Starting file enumeration over %d folders", len(c.roots))
	items, errs := c.enumerator.Enumerate(ctx, c.roots, c.extensions)

	for item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.FilesSeen++

		outcome, err := c.ProcessFile(ctx, &item)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return summary, err
			}
			summary.FilesFailed++
			logger.Error("Failed to process %s: %v", item.Path, err)
		case outcome.Skipped:
			summary.FilesSkipped++
		case outcome.ChunksIndexed > 0:
			summary.FilesIndexed++
			summary.ChunksIndexed += outcome.ChunksIndexed
		case outcome.ChunksTotal > 0:
			// Chunks were produced but none made it into the index.
			summary.FilesFailed++
		default:
			summary.FilesSkipped++
		}

		if summary.FilesSeen%ProgressLogInterval == 0 {
			elapsed := time.Since(start)
			logger.Info("Progress: %d files (%.1f files/sec)",
				summary.FilesSeen, float64(summary.FilesSeen)/elapsed.Seconds())
		}
	}

	if err := <-errs; err != nil {
		logger.Error("File enumeration failed: %v", err)
		return summary, fmt.Errorf("enumerating files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	logger.Info("Collection pass completed: %d seen, %d indexed, %d skipped, %d failed, %d chunks in %s",
		summary.FilesSeen, summary.FilesIndexed, summary.FilesSkipped,
		summary.FilesFailed, summary.ChunksIndexed, time.Since(start).Round(time.Millisecond))

	if c.cleanup != nil {
		summary.Cleanup = c.reconcileOrphans(ctx)
	}
	return summary, nil
}

// ProcessFile runs the pipeline for a single file: change detection,
// content extraction, chunking, whole-file indexing and bookkeeping.
func (c *Collector) ProcessFile(ctx context.Context, item *domain.FileItem) (*driving.FileOutcome, error) {
	outcome := &driving.FileOutcome{Path: item.Path}

	if !c.detector.ShouldReindex(ctx, item.Path, item.FileHash, item.LastWriteTimeUtc) {
		logger.Debug("Unchanged, skipping: %s", item.Path)
		outcome.Skipped = true
		return outcome, nil
	}

	if item.ExtractedContent == "" {
		if ex, ok := c.extractors[strings.ToLower(item.Extension())]; ok {
			if err := ex.Extract(ctx, item); err != nil {
				if ctx.Err() != nil {
					return outcome, err
				}
				return outcome, fmt.Errorf("extracting content: %w", err)
			}
		}
	}

	chunks, err := c.chunking.Chunk(ctx, item, c.chunkSize, c.overlap)
	if err != nil {
		return outcome, fmt.Errorf("chunking: %w", err)
	}
	outcome.ChunksTotal = len(chunks)
	if len(chunks) == 0 {
		logger.Debug("No chunks produced for %s", item.Path)
		return outcome, nil
	}

	outcome.ChunksIndexed = c.indexer.IndexFileChunks(ctx, chunks)
	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	if outcome.ChunksIndexed > 0 {
		c.detector.RecordIndexed(ctx, item.Path, item.FileHash, item.LastWriteTimeUtc, outcome.ChunksIndexed)
	}
	logger.Info("Indexed %s: %d/%d chunks", item.Path, outcome.ChunksIndexed, outcome.ChunksTotal)
	return outcome, nil
}

// reconcileOrphans removes index entries for files that no longer
// exist on disk. Failures are logged and folded into the result,
// never fatal to the pass that just completed.
func (c *Collector) reconcileOrphans(ctx context.Context) *domain.CleanupResult {
	result, err := c.cleanup.FindOrphanedDocuments(ctx)
	if err != nil {
		logger.Error("Orphan detection failed: %v", err)
		return nil
	}
	if result.OrphanedFileCount() == 0 {
		logger.Debug("No orphaned documents found")
		return result
	}

	deleted, err := c.cleanup.DeleteOrphanedDocuments(ctx, result.OrphanedFilePaths)
	if err != nil {
		logger.Error("Orphan deletion failed: %v", err)
		result.Errors = append(result.Errors, err.Error())
	}
	result.DocumentsDeleted = deleted
	logger.Info("Orphan reconciliation: %d files, %d documents deleted",
		result.OrphanedFileCount(), deleted)
	return result
}
