package driving

import (
	"context"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// ChunkingService selects a chunker strategy for a file and returns
// the decorated chunk sequence.
type ChunkingService interface {
	// Chunk segments a file's extracted content. Files with empty
	// content or an unsupported content type yield an empty sequence,
	// not an error.
	Chunk(ctx context.Context, item *domain.FileItem, chunkSize, overlap int) ([]*domain.TextChunk, error)

	// SupportedContentTypes returns all content types across the
	// registered chunkers.
	SupportedContentTypes() []string
}
