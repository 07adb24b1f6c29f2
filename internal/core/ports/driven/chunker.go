package driven

import (
	"context"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// Chunker segments extracted text into ordered chunks. Each strategy
// handles specific content types (sentence-aware plain text, page-aware
// PDF, section-aware Office). Strategies are pure: they never see file
// paths or hashes; provenance is stamped by the chunking service.
type Chunker interface {
	// SupportedContentTypes returns the content types this chunker
	// handles.
	SupportedContentTypes() []string

	// CanChunk reports whether the chunker handles a content type.
	CanChunk(contentType string) bool

	// Chunk segments content into ordered chunks. targetSize and
	// overlap are character counts. Empty or whitespace-only input
	// produces an empty sequence, never an error; any non-empty input
	// produces at least one chunk.
	Chunk(ctx context.Context, content string, metadata map[string]any, targetSize, overlap int) ([]*domain.TextChunk, error)
}
