// Package pdf provides the page-aware chunker strategy. Extracted PDF
// text carries literal "[Page N]" markers; each page is segmented
// independently so no chunk spans a page boundary, and every chunk
// records its 1-based page number.
package pdf

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jklebucki/rag-collector/internal/chunkers/textseg"
	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

var (
	pageMarker = regexp.MustCompile(`\[Page (\d+)\]`)
)

// Chunker segments page-marked text, page by page.
type Chunker struct{}

// New creates a new page-aware chunker.
func New() *Chunker {
	return &Chunker{}
}

// SupportedContentTypes returns the content types this chunker handles.
func (c *Chunker) SupportedContentTypes() []string {
	return []string{"application/pdf"}
}

// CanChunk reports whether the chunker handles a content type.
func (c *Chunker) CanChunk(contentType string) bool {
	return contentType == "application/pdf"
}

// page is one page's worth of extracted content.
type page struct {
	number  int
	content string
}

// Chunk segments content into ordered chunks, tracking a running
// global character offset across pages.
func (c *Chunker) Chunk(ctx context.Context, content string, metadata map[string]any, targetSize, overlap int) ([]*domain.TextChunk, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	var chunks []*domain.TextChunk
	chunkIndex := 0
	globalStart := 0

	for _, pg := range extractPages(content) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(pg.content) <= targetSize {
			chunks = append(chunks, newChunk(pg.content, globalStart, chunkIndex, pg.number, metadata))
			chunkIndex++
			globalStart += len(pg.content)
			continue
		}

		for _, piece := range textseg.AccumulateSentences(pg.content, targetSize, overlap, globalStart) {
			chunks = append(chunks, newChunk(piece.Content, piece.Start, chunkIndex, pg.number, metadata))
			chunkIndex++
		}
		globalStart += len(pg.content)
	}

	for _, chunk := range chunks {
		chunk.Position.TotalChunks = len(chunks)
	}

	return chunks, nil
}

// extractPages splits content on "[Page N]" markers. Input without
// markers is treated as a single page 1. Pages with no content between
// markers are dropped.
func extractPages(content string) []page {
	matches := pageMarker.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return []page{{number: 1, content: content}}
	}

	var pages []page
	for i, m := range matches {
		number, err := strconv.Atoi(content[m[2]:m[3]])
		if err != nil || number < 1 {
			number = 1
		}

		start := m[1]
		end := len(content)
		if i < len(matches)-1 {
			end = matches[i+1][0]
		}

		pageContent := strings.TrimSpace(content[start:end])
		if pageContent != "" {
			pages = append(pages, page{number: number, content: pageContent})
		}
	}
	return pages
}

func newChunk(content string, start, chunkIndex, pageNumber int, metadata map[string]any) *domain.TextChunk {
	chunk := &domain.TextChunk{
		ID:      uuid.New().String(),
		Content: content,
		Position: domain.ChunkPosition{
			ChunkIndex: chunkIndex,
			StartIndex: start,
			EndIndex:   start + len(content),
			Page:       pageNumber,
		},
		Metadata:    textseg.CopyMetadata(metadata),
		ContentHash: domain.HashContent(content),
		CreatedAt:   time.Now().UTC(),
	}

	chunk.Metadata["chunk_size"] = len(content)
	chunk.Metadata["chunk_index"] = chunkIndex
	chunk.Metadata["page_number"] = pageNumber
	chunk.Metadata["estimated_tokens"] = chunk.EstimatedTokens()

	return chunk
}
