package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// DefaultBulkBatchSize bounds the number of chunks sent to the
// embedding provider and the index backend in a single request.
const DefaultBulkBatchSize = 200

// defaultBatchRate spaces out successive batch embedding requests so a
// large file does not hammer the provider.
var defaultBatchRate = rate.Every(50 * time.Millisecond)

// Indexer orchestrates the indexing pipeline: embedding generation
// plus document index writes. Per-item failures are isolated and
// counted; only infrastructure unavailability is fatal, and only
// during EnsureReady.
type Indexer struct {
	embedder driven.EmbeddingProvider
	index    driven.DocumentIndex

	bulkBatchSize int
	limiter       *rate.Limiter
}

// IndexerOption configures the indexer.
type IndexerOption func(*Indexer)

// WithBulkBatchSize sets the sub-batch size for whole-file indexing.
func WithBulkBatchSize(size int) IndexerOption {
	return func(ix *Indexer) {
		if size > 0 {
			ix.bulkBatchSize = size
		}
	}
}

// NewIndexer creates an indexing orchestrator.
func NewIndexer(embedder driven.EmbeddingProvider, index driven.DocumentIndex, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		embedder:      embedder,
		index:         index,
		bulkBatchSize: DefaultBulkBatchSize,
		limiter:       rate.NewLimiter(defaultBatchRate, 1),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexChunk embeds and indexes a single chunk. No document is ever
// written for a chunk whose embedding failed.
func (ix *Indexer) IndexChunk(ctx context.Context, chunk *domain.TextChunk) bool {
	logger.Debug("Indexing chunk %s", chunk.ID)

	result, err := ix.embedder.GenerateEmbedding(ctx, chunk)
	if err != nil {
		logger.Error("Embedding request failed for chunk %s: %v", chunk.ID, err)
		return false
	}
	if !result.Success {
		logger.Error("Failed to generate embedding for chunk %s: %s", chunk.ID, result.ErrorMessage)
		return false
	}

	doc := domain.NewChunkDocument(chunk, result.Vector, result.ModelName)
	if err := ix.index.IndexDocument(ctx, doc); err != nil {
		logger.Error("Failed to index chunk %s: %v", chunk.ID, err)
		return false
	}

	logger.Debug("Indexed chunk %s with %dD embedding", chunk.ID, result.Dimensions())
	return true
}

// IndexChunksBatch embeds the whole batch in one provider call, drops
// chunks whose embedding failed and bulk-writes the rest. Returns the
// number of documents the backend accepted.
func (ix *Indexer) IndexChunksBatch(ctx context.Context, chunks []*domain.TextChunk) int {
	if len(chunks) == 0 {
		return 0
	}

	logger.Info("Batch indexing %d chunks", len(chunks))

	results, err := ix.embedder.GenerateBatchEmbeddings(ctx, chunks)
	if err != nil {
		logger.Error("Batch embedding failed for %d chunks: %v", len(chunks), err)
		return 0
	}

	docs := make([]*domain.ChunkDocument, 0, len(chunks))
	for i, chunk := range chunks {
		if i >= len(results) || !results[i].Success {
			msg := "no result returned"
			if i < len(results) {
				msg = results[i].ErrorMessage
			}
			logger.Warn("Skipping chunk %s due to embedding failure: %s", chunk.ID, msg)
			continue
		}
		docs = append(docs, domain.NewChunkDocument(chunk, results[i].Vector, results[i].ModelName))
	}

	if len(docs) == 0 {
		logger.Warn("No chunks could be processed - all embedding generation failed")
		return 0
	}

	indexed, err := ix.index.IndexDocumentsBatch(ctx, docs)
	if err != nil {
		logger.Error("Bulk index write failed: %v", err)
		return 0
	}

	logger.Info("Batch indexing completed: %d/%d/%d chunks indexed",
		indexed, len(docs), len(chunks))
	return indexed
}

// IndexFileChunks replaces the index contents for one file: existing
// documents for the source path are deleted first, then the new chunks
// are indexed in bounded sub-batches. Returns the number of chunks the
// backend accepted, which is strictly less than len(chunks) when
// anything failed.
func (ix *Indexer) IndexFileChunks(ctx context.Context, chunks []*domain.TextChunk) int {
	if len(chunks) == 0 {
		return 0
	}

	sourceFile := chunks[0].SourceFile
	logger.Info("Indexing %d chunks from file: %s", len(chunks), sourceFile)

	if _, err := ix.index.DeleteDocumentsBySourceFile(ctx, sourceFile); err != nil {
		logger.Error("Failed to delete existing documents for %s: %v", sourceFile, err)
		return 0
	}

	indexed := 0
	for start := 0; start < len(chunks); start += ix.bulkBatchSize {
		if ctx.Err() != nil {
			break
		}
		if start > 0 {
			// Space out successive embedding batches.
			if err := ix.limiter.Wait(ctx); err != nil {
				break
			}
		}

		end := start + ix.bulkBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		indexed += ix.IndexChunksBatch(ctx, chunks[start:end])
	}

	logger.Info("Completed indexing file %s: %d/%d chunks indexed",
		sourceFile, indexed, len(chunks))
	return indexed
}

// EnsureReady verifies both dependencies are reachable and that the
// target index exists, creating it if necessary. Any failure blocks
// the pipeline from starting.
func (ix *Indexer) EnsureReady(ctx context.Context) bool {
	logger.Info("Checking indexing system readiness...")

	if !ix.embedder.IsAvailable(ctx) {
		logger.Error("Embedding provider is not available")
		return false
	}

	if !ix.index.IsAvailable(ctx) {
		logger.Error("Document index backend is not available")
		return false
	}

	if err := ix.index.EnsureIndexExists(ctx); err != nil {
		logger.Error("Failed to ensure index exists: %v", err)
		return false
	}

	logger.Info("Indexing system is ready - embedding model: %s", ix.embedder.ModelName())
	return true
}

// Stats combines backend index statistics with the embedding
// configuration. Returns nil on any retrieval error.
func (ix *Indexer) Stats(ctx context.Context) *domain.IndexingStats {
	stats, err := ix.index.GetIndexStats(ctx)
	if err != nil || stats == nil {
		if err != nil {
			logger.Error("Error getting index stats: %v", err)
		}
		return nil
	}

	return &domain.IndexingStats{
		TotalDocuments:   stats.DocumentCount,
		IndexSizeBytes:   stats.IndexSizeBytes,
		EmbeddingModel:   ix.embedder.ModelName(),
		VectorDimensions: ix.embedder.VectorDimensions(),
		LastUpdated:      stats.LastUpdated,
	}
}
