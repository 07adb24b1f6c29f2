// Package sentence provides the chunker strategy for plain text and
// other line-oriented formats. Content is split into paragraphs first;
// paragraphs that exceed the target size are split further at sentence
// boundaries.
package sentence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jklebucki/rag-collector/internal/chunkers/textseg"
	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker accumulates paragraphs and sentences into chunks of roughly
// the target size, seeding each new chunk with the overlap tail of the
// previous one.
type Chunker struct{}

// New creates a new sentence-aware chunker.
func New() *Chunker {
	return &Chunker{}
}

// SupportedContentTypes returns the content types this chunker handles.
func (c *Chunker) SupportedContentTypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"application/json",
		"text/csv",
		"text/xml",
		"text/yaml",
	}
}

// CanChunk reports whether the chunker handles a content type.
func (c *Chunker) CanChunk(contentType string) bool {
	for _, ct := range c.SupportedContentTypes() {
		if ct == contentType {
			return true
		}
	}
	return false
}

// Chunk segments content into ordered chunks.
func (c *Chunker) Chunk(ctx context.Context, content string, metadata map[string]any, targetSize, overlap int) ([]*domain.TextChunk, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	paragraphs := textseg.SplitParagraphs(content)

	var chunks []*domain.TextChunk
	var cur strings.Builder
	curStart := 0
	chunkIndex := 0

	flush := func(seedOverlap bool) {
		if cur.Len() == 0 {
			return
		}
		chunkContent := strings.TrimSpace(cur.String())
		chunks = append(chunks, newChunk(chunkContent, curStart, chunkIndex, metadata))
		chunkIndex++
		cur.Reset()

		if seedOverlap {
			tail := textseg.OverlapTail(chunkContent, overlap)
			cur.WriteString(tail)
			curStart += len(chunkContent) - len(tail)
		} else {
			curStart += len(chunkContent)
		}
	}

	for _, paragraph := range paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(paragraph) > targetSize {
			// Flush whatever accumulated, then split the oversized
			// paragraph at sentence boundaries.
			flush(false)

			for _, piece := range textseg.AccumulateSentences(paragraph, targetSize, overlap, curStart) {
				chunks = append(chunks, newChunk(piece.Content, piece.Start, chunkIndex, metadata))
				chunkIndex++
				curStart = piece.End
			}
			continue
		}

		if cur.Len()+len(paragraph)+2 > targetSize && cur.Len() > 0 {
			flush(true)
		}

		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(paragraph)
	}

	flush(false)

	for _, chunk := range chunks {
		chunk.Position.TotalChunks = len(chunks)
	}

	return chunks, nil
}

func newChunk(content string, start, chunkIndex int, metadata map[string]any) *domain.TextChunk {
	chunk := &domain.TextChunk{
		ID:      uuid.New().String(),
		Content: content,
		Position: domain.ChunkPosition{
			ChunkIndex: chunkIndex,
			StartIndex: start,
			EndIndex:   start + len(content),
			Page:       1,
		},
		Metadata:    textseg.CopyMetadata(metadata),
		ContentHash: domain.HashContent(content),
		CreatedAt:   time.Now().UTC(),
	}

	chunk.Metadata["chunk_size"] = len(content)
	chunk.Metadata["chunk_index"] = chunkIndex
	chunk.Metadata["estimated_tokens"] = chunk.EstimatedTokens()

	return chunk
}
