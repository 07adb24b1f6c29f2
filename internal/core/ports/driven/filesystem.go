package driven

import (
	"context"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// FileChecker answers file-system existence queries. Used by the
// orphan reconciler to decide whether an indexed path still exists.
type FileChecker interface {
	// Exists reports whether the path refers to an existing file.
	Exists(path string) (bool, error)
}

// FileEnumerator streams files matching the configured extensions
// under a set of root folders. Items arrive on the first channel; a
// single terminal error, if any, arrives on the second. Both channels
// are closed when enumeration ends.
type FileEnumerator interface {
	Enumerate(ctx context.Context, roots, extensions []string) (<-chan domain.FileItem, <-chan error)
}

// ContentExtractor turns a file on disk into a FileItem with extracted
// text. Plain text formats read the file directly; binary formats are
// handled by external extractors outside this module.
type ContentExtractor interface {
	// SupportedExtensions returns the lower-cased extensions (with
	// dot) this extractor handles.
	SupportedExtensions() []string

	// Extract reads the file and fills ExtractedContent and
	// ContentMetadata on a FileItem describing it.
	Extract(ctx context.Context, item *domain.FileItem) error
}
