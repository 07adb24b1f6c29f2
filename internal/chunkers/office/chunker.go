// Package office provides the section-aware chunker strategy for
// Microsoft Office document text (.docx, .xlsx, .pptx). Content is
// whitespace-normalised, split into sections on paragraph breaks, and
// oversized sections are sliced with a backward break-point search
// that prefers sentence ends over word boundaries over hard cuts.
package office

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jklebucki/rag-collector/internal/chunkers/textseg"
	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

const (
	// sectionSplitThreshold is the section length above which sections
	// are pre-split into sentence groups before size-based chunking.
	sectionSplitThreshold = 800

	// sentenceGroupLimit caps the size of a pre-split sentence group.
	sentenceGroupLimit = 600

	// breakSearchFraction is the share of the ideal chunk length
	// scanned backward when looking for a break point.
	breakSearchFraction = 0.2
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Chunker segments normalised Office document text section by section.
type Chunker struct{}

// New creates a new section-aware chunker.
func New() *Chunker {
	return &Chunker{}
}

// SupportedContentTypes returns the content types this chunker handles.
func (c *Chunker) SupportedContentTypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
}

// CanChunk reports whether the chunker handles a content type.
func (c *Chunker) CanChunk(contentType string) bool {
	lowered := strings.ToLower(contentType)
	for _, ct := range c.SupportedContentTypes() {
		if ct == lowered {
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

	normalised := normalise(content)
	sections := splitSections(normalised)

	var chunks []*domain.TextChunk
	chunkIndex := 0
	prevTail := ""

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(section) <= targetSize {
			chunk := newChunk(section, metadata, chunkIndex, prevTail, overlap)
			chunks = append(chunks, chunk)
			chunkIndex++
			prevTail = chunkTail(chunk.Content, overlap)
			continue
		}

		sectionChunks, tail := chunkLargeSection(section, metadata, targetSize, overlap, chunkIndex, prevTail)
		chunks = append(chunks, sectionChunks...)
		chunkIndex += len(sectionChunks)
		if len(sectionChunks) > 0 {
			prevTail = tail
		}
	}

	for _, chunk := range chunks {
		chunk.Position.TotalChunks = len(chunks)
	}

	return chunks, nil
}

// normalise cleans up whitespace: line endings become "\n", runs of
// spaces and tabs collapse to one space, and three or more consecutive
// newlines collapse to a single blank line.
func normalise(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = spaceRuns.ReplaceAllString(content, " ")
	content = newlineRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// splitSections splits on paragraph breaks; long sections are further
// pre-split into sentence groups capped at sentenceGroupLimit.
func splitSections(content string) []string {
	var sections []string
	for _, paragraph := range strings.Split(content, "\n\n") {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > sectionSplitThreshold {
			sections = append(sections, groupSentences(trimmed)...)
		} else {
			sections = append(sections, trimmed)
		}
	}
	return sections
}

// groupSentences joins consecutive sentences into groups of at most
// sentenceGroupLimit characters.
func groupSentences(text string) []string {
	var groups []string
	var cur string

	for _, sentence := range textseg.SplitSentences(text) {
		switch {
		case cur == "":
			cur = sentence
		case len(cur)+len(sentence)+1 <= sentenceGroupLimit:
			cur += " " + sentence
		default:
			groups = append(groups, cur)
			cur = sentence
		}
	}
	if cur != "" {
		groups = append(groups, cur)
	}
	return groups
}

// chunkLargeSection slices a section that still exceeds targetSize
// after pre-splitting, cutting at break points found by a backward
// search. Returns the chunks and the overlap tail of the last one.
func chunkLargeSection(section string, metadata map[string]any, targetSize, overlap, startIndex int, prevTail string) ([]*domain.TextChunk, string) {
	var chunks []*domain.TextChunk
	pos := 0
	chunkIndex := startIndex
	tail := prevTail

	for pos < len(section) {
		size := targetSize
		if remaining := len(section) - pos; size > remaining {
			size = remaining
		}
		if pos+size < len(section) {
			size = findBreakPoint(section, pos, size) - pos
		}

		content := section[pos : pos+size]
		chunk := newChunk(content, metadata, chunkIndex, tail, overlap)
		chunks = append(chunks, chunk)
		chunkIndex++

		tail = chunkTail(chunk.Content, overlap)
		pos += size
	}

	return chunks, tail
}

// findBreakPoint searches backward from the ideal cut point, within
// the last breakSearchFraction of the chunk, for sentence-ending
// punctuation, then for any whitespace, falling back to the ideal
// length when neither is found.
func findBreakPoint(text string, start, idealLength int) int {
	end := start + idealLength
	if end >= len(text) {
		return len(text)
	}

	searchStart := start + int(float64(idealLength)*(1-breakSearchFraction))

	for i := end; i >= searchStart; i-- {
		if i >= len(text) {
			continue
		}
		ch := text[i]
		if ch == '.' || ch == '!' || ch == '?' {
			// Move past the punctuation and trailing whitespace.
			next := i + 1
			for next < len(text) && isSpace(text[next]) {
				next++
			}
			return next
		}
	}

	for i := end; i >= searchStart; i-- {
		if i < len(text) && isSpace(text[i]) {
			return i + 1
		}
	}

	return end
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}

// chunkTail returns the trailing portion of a chunk carried into the
// next one, trimmed forward to a word boundary so it never starts
// mid-word.
func chunkTail(content string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	if len(content) <= overlap {
		return content
	}

	tail := content[len(content)-overlap:]

	if space := strings.IndexByte(tail, ' '); space > 0 && space < overlap/2 {
		tail = tail[space+1:]
	}
	return strings.TrimSpace(tail)
}

// newChunk builds a chunk, prepending the previous chunk's overlap
// tail unless the content already starts with it.
func newChunk(content string, metadata map[string]any, chunkIndex int, prevTail string, overlap int) *domain.TextChunk {
	final := content
	if prevTail != "" && !strings.HasPrefix(content, prevTail) {
		final = prevTail + " " + content
	}

	chunk := &domain.TextChunk{
		ID:      uuid.New().String(),
		Content: final,
		Position: domain.ChunkPosition{
			ChunkIndex: chunkIndex,
			StartIndex: 0,
			EndIndex:   len(final),
			Page:       1,
		},
		Metadata:    textseg.CopyMetadata(metadata),
		ContentHash: domain.HashContent(final),
		CreatedAt:   time.Now().UTC(),
	}

	chunk.Metadata["chunk_type"] = "office_document"
	chunk.Metadata["chunk_method"] = "section_aware"
	chunk.Metadata["overlap_size"] = overlap
	chunk.Metadata["chunk_size"] = len(final)
	chunk.Metadata["chunk_index"] = chunkIndex
	chunk.Metadata["estimated_tokens"] = chunk.EstimatedTokens()

	return chunk
}
