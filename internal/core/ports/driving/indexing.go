package driving

import (
	"context"
	"time"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// Indexer turns chunks into embeddings and writes them to the document
// index. Per-item failures are isolated and counted, never fatal to a
// batch or a file.
type Indexer interface {
	// IndexChunk embeds and indexes a single chunk. Returns false on
	// any failure; no partial document is ever written.
	IndexChunk(ctx context.Context, chunk *domain.TextChunk) bool

	// IndexChunksBatch embeds the whole batch in one provider call,
	// drops chunks whose embedding failed, bulk-writes the rest and
	// returns the number of documents the backend accepted.
	IndexChunksBatch(ctx context.Context, chunks []*domain.TextChunk) int

	// IndexFileChunks replaces all index documents for the chunks'
	// source file: existing documents are deleted first, then the new
	// chunks are indexed in bounded sub-batches. Returns the number of
	// chunks indexed.
	IndexFileChunks(ctx context.Context, chunks []*domain.TextChunk) int

	// EnsureReady verifies the embedding provider and the index
	// backend are reachable and that the target index exists.
	EnsureReady(ctx context.Context) bool

	// Stats reports index statistics, or nil if retrieval failed.
	Stats(ctx context.Context) *domain.IndexingStats
}

// ChangeDetector decides whether files need reprocessing and records
// indexing outcomes.
type ChangeDetector interface {
	// ShouldReindex reports whether the file at path needs indexing,
	// comparing hash and modification time against the persisted
	// record. Unknown paths and lookup failures default to true.
	ShouldReindex(ctx context.Context, filePath, fileHash string, lastModified time.Time) bool

	// RecordIndexed upserts the change-detection record after a
	// successful index run. Failures are logged, never propagated.
	RecordIndexed(ctx context.Context, filePath, fileHash string, lastModified time.Time, chunkCount int)

	// DeleteMetadata removes the record for a path. Idempotent.
	DeleteMetadata(ctx context.Context, filePath string) error

	// EnsureMetadataIndex creates the record collection if missing.
	EnsureMetadataIndex(ctx context.Context) error
}
