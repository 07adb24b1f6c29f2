package driving

import (
	"context"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// CleanupService detects and removes index entries whose source files
// no longer exist.
type CleanupService interface {
	// FindOrphanedDocuments scans the index's file inventory against
	// the file system. Per-path failures are recorded in the result
	// and do not abort the scan.
	FindOrphanedDocuments(ctx context.Context) (*domain.CleanupResult, error)

	// DryRunCleanup runs detection only and guarantees zero side
	// effects; DocumentsDeleted is always 0.
	DryRunCleanup(ctx context.Context) (*domain.CleanupResult, error)

	// DeleteOrphanedDocuments removes index documents and metadata
	// records for the given paths, returning the number of documents
	// actually deleted.
	DeleteOrphanedDocuments(ctx context.Context, orphanedFilePaths []string) (int, error)
}
