package domain

// CleanupResult describes the outcome of an orphaned document scan or
// cleanup pass.
type CleanupResult struct {
	// OrphanedFilePaths lists indexed paths with no matching file on
	// disk.
	OrphanedFilePaths []string

	// ChunksPerFile is the indexed chunk count per orphaned path.
	ChunksPerFile map[string]int

	// TotalOrphanedChunks is the sum of ChunksPerFile.
	TotalOrphanedChunks int

	// DocumentsDeleted is the number of documents actually removed.
	// Always 0 for dry runs.
	DocumentsDeleted int

	// IsDryRun marks a detection-only pass with no side effects.
	IsDryRun bool

	// Errors collects non-fatal per-path failure messages.
	Errors []string
}

// OrphanedFileCount returns the number of unique orphaned files.
func (r *CleanupResult) OrphanedFileCount() int {
	return len(r.OrphanedFilePaths)
}
