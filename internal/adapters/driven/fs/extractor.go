package fs

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure PlainTextExtractor implements the interface.
var _ driven.ContentExtractor = (*PlainTextExtractor)(nil)

// plainTextExtensions are the formats read directly as UTF-8 text.
var plainTextExtensions = []string{
	".txt", ".md", ".csv", ".log", ".json", ".xml", ".yaml", ".yml",
}

// PlainTextExtractor reads text files from disk verbatim. Binary
// formats (PDF, Office) are converted to text by external tooling
// before they reach the source folders.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain-text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// SupportedExtensions returns the text extensions handled.
func (e *PlainTextExtractor) SupportedExtensions() []string {
	return append([]string(nil), plainTextExtensions...)
}

// Extract reads the file and fills the item's content and metadata.
// Files with invalid UTF-8 are rejected rather than indexed mangled.
func (e *PlainTextExtractor) Extract(ctx context.Context, item *domain.FileItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Debug("Extracting content from plain text file: %s", item.Path)

	raw, err := os.ReadFile(item.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", item.Path, err)
	}
	if !utf8.Valid(raw) {
		return fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrUnsupportedType, item.Path)
	}

	content := string(raw)
	item.ExtractedContent = content

	if item.ContentMetadata == nil {
		item.ContentMetadata = make(map[string]string)
	}
	item.ContentMetadata["file_name"] = item.FileName()
	item.ContentMetadata["file_size"] = strconv.FormatInt(item.Size, 10)
	item.ContentMetadata["line_count"] = strconv.Itoa(strings.Count(content, "\n") + 1)
	item.ContentMetadata["character_count"] = strconv.Itoa(len(content))
	item.ContentMetadata["word_count"] = strconv.Itoa(len(strings.Fields(content)))

	logger.Debug("Extracted %d characters from %s", len(content), item.Path)
	return nil
}
