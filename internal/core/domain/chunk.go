package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"time"
)

// ContentHashLength is the number of leading characters of the encoded
// SHA-256 digest kept as a chunk content hash. Short hashes are enough
// for dedup and debugging and keep index documents small.
const ContentHashLength = 12

// CharactersPerToken is the rough character-to-token ratio used to
// estimate token counts from chunk length.
const CharactersPerToken = 4.0

// TextChunk is the atomic unit of indexing: a bounded segment of a
// document's extracted text with position and provenance. Chunks are
// created in bulk by a chunker strategy, decorated with file-level
// provenance by the chunking service, and discarded once indexed; the
// persisted representation is ChunkDocument.
type TextChunk struct {
	// ID is a globally unique identifier for the chunk.
	ID string

	// Content is the chunk text. It may begin with an overlap tail
	// carried over from the previous chunk for continuity.
	Content string

	// ContentHash is a short fingerprint of Content.
	ContentHash string

	// Position locates the chunk within the source document.
	Position ChunkPosition

	// Metadata merges file-level metadata with chunk-level facts.
	// Values are scalars or string slices.
	Metadata map[string]any

	// SourceFile is the path of the owning file. This is provenance
	// only, a foreign-key style reference, never ownership.
	SourceFile string

	// FileHash is the source file's content fingerprint at chunk
	// creation time, used later for change detection.
	FileHash string

	// FileExtension, FileSize, LastModified and AclGroups are copied
	// from the source file when provenance is stamped.
	FileExtension string
	FileSize      int64
	LastModified  time.Time
	AclGroups     []string

	// CreatedAt is when the chunk was produced.
	CreatedAt time.Time
}

// ChunkPosition locates a chunk within its source document. Start and
// end offsets are best-effort: overlap splicing makes them approximate.
type ChunkPosition struct {
	// ChunkIndex is the 0-based sequence number within the file.
	ChunkIndex int

	// TotalChunks is the final chunk count for the file. It is
	// back-filled onto every chunk once the full sequence is known.
	TotalChunks int

	// StartIndex and EndIndex are character offsets into the page or
	// file content.
	StartIndex int
	EndIndex   int

	// Page is the 1-based page number; 1 for non-paginated formats.
	Page int

	// Section is an optional heading or section label.
	Section string
}

// Size returns the chunk length in characters.
func (c *TextChunk) Size() int {
	return len(c.Content)
}

// EstimatedTokens returns an approximate token count derived from the
// content length.
func (c *TextChunk) EstimatedTokens() int {
	return (len(c.Content) + int(CharactersPerToken) - 1) / int(CharactersPerToken)
}

// HashContent computes the short content fingerprint used for chunks:
// the first ContentHashLength characters of the URL-safe base64
// encoding of the SHA-256 digest.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	encoded := base64.URLEncoding.EncodeToString(sum[:])
	if len(encoded) > ContentHashLength {
		encoded = encoded[:ContentHashLength]
	}
	return encoded
}
