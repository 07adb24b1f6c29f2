package driving

import (
	"context"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// Collector drives the per-file pipeline over the configured source
// folders: enumerate, detect changes, chunk, index, record, reconcile.
type Collector interface {
	// Run processes every file under the configured source folders
	// once and then reconciles orphans.
	Run(ctx context.Context) (*RunSummary, error)

	// ProcessFile runs the pipeline for one file.
	ProcessFile(ctx context.Context, item *domain.FileItem) (*FileOutcome, error)
}

// RunSummary reports the outcome of a full collector pass.
type RunSummary struct {
	// FilesSeen is the number of files enumerated.
	FilesSeen int

	// FilesIndexed is the number of files (re)indexed this pass.
	FilesIndexed int

	// FilesSkipped is the number of unchanged files.
	FilesSkipped int

	// FilesFailed is the number of files with no chunks indexed.
	FilesFailed int

	// ChunksIndexed is the total number of chunks written.
	ChunksIndexed int

	// Cleanup is the orphan reconciliation result, nil if the
	// reconciliation step did not run.
	Cleanup *domain.CleanupResult
}

// FileOutcome reports the outcome of processing a single file.
type FileOutcome struct {
	// Path is the file processed.
	Path string

	// Skipped is true when change detection found the file unchanged.
	Skipped bool

	// ChunksTotal is the number of chunks produced.
	ChunksTotal int

	// ChunksIndexed is the number of chunks accepted by the backend.
	ChunksIndexed int
}
