package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure ChangeDetector implements the interface.
var _ driving.ChangeDetector = (*ChangeDetector)(nil)

// MetadataIndexName is the logical collection holding change-detection
// records, distinct from the chunk index.
const MetadataIndexName = "rag-file-metadata"

// ChangeDetector decides whether files need reprocessing by comparing
// content fingerprints and modification times against records kept in
// the index backend.
type ChangeDetector struct {
	index     driven.DocumentIndex
	indexName string
}

// NewChangeDetector creates a change detector storing its records in
// the given backend.
func NewChangeDetector(index driven.DocumentIndex) *ChangeDetector {
	return &ChangeDetector{
		index:     index,
		indexName: MetadataIndexName,
	}
}

// ShouldReindex reports whether the file needs (re)indexing. Hash and
// timestamp comparison are deliberately redundant: a touched but
// unchanged file and a changed but untouched file must both be caught.
// Unknown paths and lookup failures default to reindex, never to a
// silent skip.
func (d *ChangeDetector) ShouldReindex(ctx context.Context, filePath, fileHash string, lastModified time.Time) bool {
	logger.Debug("Checking if file needs reindexing: %s", filePath)

	var record domain.FileMetadataDocument
	err := d.index.GetDocumentByID(ctx, d.indexName, domain.FileMetadataID(filePath), &record)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("File not found in metadata index, needs indexing: %s", filePath)
		return true
	}
	if err != nil {
		logger.Error("Error checking if file needs reindexing: %s: %v. Defaulting to reindex.", filePath, err)
		return true
	}

	if record.ContentHash != fileHash {
		logger.Info("File content changed (hash mismatch), needs reindexing: %s", filePath)
		return true
	}

	if !record.LastModified.Equal(lastModified) {
		logger.Info("File modified date changed, needs reindexing: %s", filePath)
		return true
	}

	logger.Debug("File unchanged, skipping reindexing: %s", filePath)
	return false
}

// RecordIndexed upserts the change-detection record after a successful
// index run. Failures are logged and swallowed: losing this
// bookkeeping must not fail an otherwise successful run, at worst it
// causes one redundant reindex later.
func (d *ChangeDetector) RecordIndexed(ctx context.Context, filePath, fileHash string, lastModified time.Time, chunkCount int) {
	record := domain.NewFileMetadataDocument(filePath, fileHash, lastModified, chunkCount)

	if err := d.index.IndexDocumentToCustomIndex(ctx, d.indexName, record.ID, record); err != nil {
		logger.Error("Error recording indexed file metadata for %s: %v", filePath, err)
		return
	}

	logger.Debug("Recorded indexed file metadata: %s (%d chunks)", filePath, chunkCount)
}

// DeleteMetadata removes the record for a path. Deleting a missing
// record is not an error.
func (d *ChangeDetector) DeleteMetadata(ctx context.Context, filePath string) error {
	if err := d.index.DeleteDocumentByID(ctx, d.indexName, domain.FileMetadataID(filePath)); err != nil {
		return fmt.Errorf("delete file metadata: %w", err)
	}
	return nil
}

// metadataSchema describes the change-detection record collection.
var metadataSchema = map[string]any{
	"id":            "text",
	"filePath":      "text",
	"contentHash":   "text",
	"lastModified":  "date",
	"chunkCount":    "int",
	"indexedAt":     "date",
	"fileExtension": "text",
}

// EnsureMetadataIndex creates the metadata collection if missing.
func (d *ChangeDetector) EnsureMetadataIndex(ctx context.Context) error {
	return d.index.EnsureCustomIndexExists(ctx, d.indexName, metadataSchema)
}
