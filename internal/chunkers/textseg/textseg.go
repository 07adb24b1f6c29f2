// Package textseg provides the text segmentation helpers shared by the
// chunker strategies: paragraph and sentence splitting, overlap tail
// extraction, and sentence-accumulating chunk assembly.
package textseg

import (
	"regexp"
	"strings"
)

// sentenceBoundary matches a sentence-ending punctuation mark followed
// by whitespace and an uppercase letter. The split point sits right
// after the punctuation so the uppercase letter starts the next
// sentence.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// sentenceEndMarkers are the punctuation marks treated as sentence
// terminators.
const sentenceEndMarkers = ".!?"

// SplitParagraphs splits content on blank-line separators, falling back
// to single newlines when no blank lines are present. Empty paragraphs
// are dropped and the rest trimmed.
func SplitParagraphs(content string) []string {
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if strings.Contains(content, sep) {
			return splitAndTrim(content, sep)
		}
	}
	return splitAndTrim(content, "\n")
}

func splitAndTrim(content, sep string) []string {
	parts := strings.Split(content, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSentences splits text at sentence boundaries. When the boundary
// pattern finds at most one sentence it falls back to a plain split on
// the punctuation marks themselves.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// Cut just past the punctuation mark.
		end := loc[0] + 1
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	if len(sentences) > 1 {
		return sentences
	}

	// Fallback: split on the markers, dropping them.
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceEndMarkers, r)
	})
	sentences = sentences[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// OverlapTail extracts the trailing fragment of a flushed chunk that
// seeds the next chunk. The cut prefers a sentence boundary, then a
// word boundary, and only then the hard character cut, so the seed
// never starts mid-word. Content shorter than the overlap is returned
// whole.
func OverlapTail(content string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	if len(content) <= overlap {
		return content
	}

	candidate := content[len(content)-overlap:]

	last := -1
	for _, marker := range sentenceEndMarkers {
		if pos := strings.LastIndexByte(candidate, byte(marker)); pos > last {
			last = pos
		}
	}
	if last > 0 {
		return strings.TrimSpace(candidate[last+1:])
	}

	// No sentence end in the window: drop the leading partial word.
	words := strings.Fields(candidate)
	if len(words) > 1 {
		return strings.Join(words[1:], " ")
	}

	return candidate
}

// Piece is a contiguous segment assembled from accumulated sentences.
// Offsets are best-effort positions into the source text; overlap
// splicing makes them approximate.
type Piece struct {
	Content string
	Start   int
	End     int
}

// AccumulateSentences splits text into sentences and accumulates them
// into pieces of at most targetSize characters. When a piece is
// flushed, the next one is seeded with the overlap tail of the flushed
// content. startOffset shifts the reported piece offsets.
//
// A single sentence longer than targetSize becomes its own oversized
// piece; sentences are never cut mid-way here.
func AccumulateSentences(text string, targetSize, overlap, startOffset int) []Piece {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var pieces []Piece
	var cur strings.Builder
	start := startOffset

	for _, sentence := range sentences {
		if cur.Len()+len(sentence)+1 > targetSize && cur.Len() > 0 {
			content := strings.TrimSpace(cur.String())
			pieces = append(pieces, Piece{Content: content, Start: start, End: start + len(content)})

			tail := OverlapTail(content, overlap)
			cur.Reset()
			cur.WriteString(tail)
			start += len(content) - len(tail)
		}

		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(sentence)
	}

	if cur.Len() > 0 {
		content := strings.TrimSpace(cur.String())
		pieces = append(pieces, Piece{Content: content, Start: start, End: start + len(content)})
	}

	return pieces
}

// CopyMetadata shallow-copies a metadata map so chunk-level facts can
// be added without mutating the shared file-level map.
func CopyMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata)+4)
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
