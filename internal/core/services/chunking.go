// Package services implements the collector pipeline: chunking
// dispatch, indexing orchestration, change detection and orphaned
// document cleanup.
package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/core/ports/driving"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure ChunkingService implements the interface.
var _ driving.ChunkingService = (*ChunkingService)(nil)

// Default chunking parameters, in characters.
const (
	DefaultChunkSize = 1200
	DefaultOverlap   = 200
)

// contentTypeByExtension maps file extensions to the content-type
// labels chunkers are registered under. Unknown extensions fall back
// to text/plain.
var contentTypeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".json": "application/json",
	".csv":  "text/csv",
	".xml":  "text/xml",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ChunkingService dispatches files to the first registered chunker
// strategy that accepts their content type and stamps the produced
// chunks with source-file provenance. This is the only place where
// chunk-to-file provenance is attached; the strategies themselves stay
// pure.
type ChunkingService struct {
	chunkers []driven.Chunker
}

// NewChunkingService creates a dispatcher over the given strategies.
// Order matters: the first strategy whose CanChunk accepts the content
// type wins.
func NewChunkingService(chunkers ...driven.Chunker) *ChunkingService {
	s := &ChunkingService{chunkers: chunkers}
	logger.Info("Chunking service initialised with %d chunkers supporting %d content types",
		len(chunkers), len(s.SupportedContentTypes()))
	return s
}

// SupportedContentTypes returns all content types across the
// registered chunkers, deduplicated.
func (s *ChunkingService) SupportedContentTypes() []string {
	seen := make(map[string]struct{})
	var types []string
	for _, c := range s.chunkers {
		for _, ct := range c.SupportedContentTypes() {
			if _, ok := seen[ct]; ok {
				continue
			}
			seen[ct] = struct{}{}
			types = append(types, ct)
		}
	}
	return types
}

// Chunk segments a file's extracted content with the matching
// strategy. Empty content, an unmatched content type and strategy
// failures all yield an empty sequence rather than an error, so one
// malformed file cannot abort a batch run.
func (s *ChunkingService) Chunk(ctx context.Context, item *domain.FileItem, chunkSize, overlap int) ([]*domain.TextChunk, error) {
	if strings.TrimSpace(item.ExtractedContent) == "" {
		logger.Warn("No extracted content found for file: %s", item.Path)
		return nil, nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	contentType := ContentTypeForPath(item.Path)
	chunker := s.chunkerFor(contentType)
	if chunker == nil {
		logger.Warn("No chunker found for content type %s, file: %s", contentType, item.Path)
		return nil, nil
	}

	metadata := buildFileMetadata(item)

	chunks, err := chunker.Chunk(ctx, item.ExtractedContent, metadata, chunkSize, overlap)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Error("Error chunking content for file %s: %v", item.Path, err)
		return nil, nil
	}

	// Stamp provenance on every chunk.
	for _, chunk := range chunks {
		chunk.SourceFile = item.Path
		chunk.FileHash = item.FileHash
		chunk.FileExtension = item.Extension()
		chunk.FileSize = item.Size
		chunk.LastModified = item.LastWriteTimeUtc
		chunk.AclGroups = append([]string(nil), item.AclGroups...)
	}

	logger.Info("Chunked file %s into %d chunks", item.Path, len(chunks))
	return chunks, nil
}

func (s *ChunkingService) chunkerFor(contentType string) driven.Chunker {
	for _, c := range s.chunkers {
		if c.CanChunk(contentType) {
			return c
		}
	}
	return nil
}

// ContentTypeForPath maps a file's extension to its content-type
// label. Unknown extensions default to text/plain.
func ContentTypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypeByExtension[ext]; ok {
		return ct
	}
	return "text/plain"
}

// buildFileMetadata assembles the file-level metadata attached to
// every chunk. Extraction metadata keys are namespaced with a
// "content_" prefix to avoid collisions.
func buildFileMetadata(item *domain.FileItem) map[string]any {
	metadata := map[string]any{
		"source_file":          item.SourcePath(),
		"file_size":            item.Size,
		"last_modified":        item.LastWriteTimeUtc,
		"file_extension":       item.Extension(),
		"content_extracted_at": time.Now().UTC(),
	}

	for key, value := range item.ContentMetadata {
		metadata["content_"+key] = value
	}

	if len(item.AclGroups) > 0 {
		metadata["acl_groups"] = append([]string(nil), item.AclGroups...)
	}

	return metadata
}
