package services

import (
	"context"
	"fmt"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure CleanupService implements the interface.
var _ driving.CleanupService = (*CleanupService)(nil)

// CleanupService detects and removes index entries whose source files
// no longer exist on the file system.
type CleanupService struct {
	index    driven.DocumentIndex
	detector driving.ChangeDetector
	fs       driven.FileChecker
}

// NewCleanupService creates an orphan reconciler.
func NewCleanupService(index driven.DocumentIndex, detector driving.ChangeDetector, fs driven.FileChecker) *CleanupService {
	return &CleanupService{
		index:    index,
		detector: detector,
		fs:       fs,
	}
}

// FindOrphanedDocuments queries the index for its distinct source-file
// paths and checks each against the file system. A single inaccessible
// path is recorded as an error and does not abort the scan; a
// cancelled context stops the scan early, keeping results gathered so
// far.
func (s *CleanupService) FindOrphanedDocuments(ctx context.Context) (*domain.CleanupResult, error) {
	result := &domain.CleanupResult{
		ChunksPerFile: make(map[string]int),
	}

	logger.Info("Starting orphaned document detection...")

	indexedPaths, err := s.index.GetAllSourceFilePaths(ctx)
	if err != nil {
		logger.Error("Error getting indexed file paths: %v", err)
		result.Errors = append(result.Errors, fmt.Sprintf("detection error: %v", err))
		return result, nil
	}

	logger.Info("Found %d unique files in the index", len(indexedPaths))
	if len(indexedPaths) == 0 {
		return result, nil
	}

	for path, chunkCount := range indexedPaths {
		if ctx.Err() != nil {
			break
		}

		exists, err := s.fs.Exists(path)
		if err != nil {
			logger.Warn("Error checking file existence: %s: %v", path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("error checking file %s: %v", path, err))
			continue
		}

		if !exists {
			result.OrphanedFilePaths = append(result.OrphanedFilePaths, path)
			result.ChunksPerFile[path] = chunkCount
			result.TotalOrphanedChunks += chunkCount
			logger.Debug("File no longer exists: %s (had %d chunks)", path, chunkCount)
		}
	}

	logger.Info("Found %d orphaned files with %d chunks total",
		result.OrphanedFileCount(), result.TotalOrphanedChunks)
	return result, nil
}

// DryRunCleanup reuses detection verbatim and forces DocumentsDeleted
// to zero, guaranteeing no side effects. Operators use it to preview
// a cleanup before committing.
func (s *CleanupService) DryRunCleanup(ctx context.Context) (*domain.CleanupResult, error) {
	logger.Info("Starting dry run orphaned document cleanup...")

	result, err := s.FindOrphanedDocuments(ctx)
	if err != nil {
		return nil, err
	}

	result.IsDryRun = true
	result.DocumentsDeleted = 0

	if result.OrphanedFileCount() > 0 {
		logger.Info("DRY RUN: would delete %d chunks from %d orphaned files",
			result.TotalOrphanedChunks, result.OrphanedFileCount())
		for path, count := range result.ChunksPerFile {
			logger.Info("  - %s: %d chunks", path, count)
		}
	} else {
		logger.Info("DRY RUN: no orphaned documents found")
	}

	return result, nil
}

// DeleteOrphanedDocuments removes index documents and metadata records
// for the given paths. Both deletions are attempted per path even if
// one fails; per-path failures are logged and do not stop remaining
// paths. Returns the number of documents actually deleted.
func (s *CleanupService) DeleteOrphanedDocuments(ctx context.Context, orphanedFilePaths []string) (int, error) {
	if len(orphanedFilePaths) == 0 {
		logger.Info("No orphaned files to delete")
		return 0, nil
	}

	logger.Info("Deleting documents for %d orphaned files", len(orphanedFilePaths))

	deleted := 0
	for _, path := range orphanedFilePaths {
		if ctx.Err() != nil {
			break
		}

		count, err := s.index.DeleteDocumentsBySourceFile(ctx, path)
		if err != nil {
			logger.Error("Error deleting documents for file %s: %v", path, err)
		} else {
			deleted += count
			logger.Info("Deleted %d documents for orphaned file: %s", count, path)
		}

		if err := s.detector.DeleteMetadata(ctx, path); err != nil {
			logger.Warn("Failed to delete metadata for orphaned file %s: %v", path, err)
		}
	}

	logger.Info("Orphaned document cleanup completed: %d documents deleted for %d files",
		deleted, len(orphanedFilePaths))
	return deleted, nil
}
