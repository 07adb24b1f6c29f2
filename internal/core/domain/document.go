package domain

import (
	"encoding/base64"
	"path/filepath"
	"strings"
	"time"
)

// ChunkDocument is the persisted form of a chunk: everything needed to
// reconstruct a document-detail view and to locate and delete all
// chunks belonging to a source file.
type ChunkDocument struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	Embedding       []float32      `json:"embedding"`
	SourceFile      string         `json:"sourceFile"`
	FileExtension   string         `json:"fileExtension"`
	FileSize        int64          `json:"fileSize"`
	LastModified    time.Time      `json:"lastModified"`
	Position        ChunkPosition  `json:"position"`
	Metadata        map[string]any `json:"metadata"`
	AclGroups       []string       `json:"aclGroups"`
	ContentHash     string         `json:"contentHash"`
	IndexedAt       time.Time      `json:"indexedAt"`
	EstimatedTokens int            `json:"estimatedTokens"`
	Embedder        EmbeddingInfo  `json:"embeddingDetails"`
}

// EmbeddingInfo records which model produced a document's vector.
type EmbeddingInfo struct {
	ModelName   string    `json:"modelName"`
	Dimensions  int       `json:"dimensions"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// NewChunkDocument derives the persisted document from a chunk plus its
// embedding vector and the embedding model name. The derivation is
// deterministic apart from timestamps.
func NewChunkDocument(chunk *TextChunk, embedding []float32, modelName string) *ChunkDocument {
	metadata := make(map[string]any, len(chunk.Metadata))
	for k, v := range chunk.Metadata {
		metadata[k] = v
	}

	return &ChunkDocument{
		ID:              chunk.ID,
		Content:         chunk.Content,
		Embedding:       embedding,
		SourceFile:      chunk.SourceFile,
		FileExtension:   chunk.FileExtension,
		FileSize:        chunk.FileSize,
		LastModified:    chunk.LastModified,
		Position:        chunk.Position,
		Metadata:        metadata,
		AclGroups:       append([]string(nil), chunk.AclGroups...),
		ContentHash:     chunk.ContentHash,
		IndexedAt:       time.Now().UTC(),
		EstimatedTokens: chunk.EstimatedTokens(),
		Embedder: EmbeddingInfo{
			ModelName:   modelName,
			Dimensions:  len(embedding),
			GeneratedAt: time.Now().UTC(),
		},
	}
}

// FileMetadataDocument is the change-detection record kept per source
// file path, stored in the index backend under its own collection.
// At most one record exists per path.
type FileMetadataDocument struct {
	ID            string    `json:"id"`
	FilePath      string    `json:"filePath"`
	ContentHash   string    `json:"contentHash"`
	LastModified  time.Time `json:"lastModified"`
	ChunkCount    int       `json:"chunkCount"`
	IndexedAt     time.Time `json:"indexedAt"`
	FileExtension string    `json:"fileExtension"`
}

// FileMetadataID derives the stable record ID for a file path: the
// URL-safe base64 encoding of the path without padding. Stable, not
// meant to be decoded.
func FileMetadataID(filePath string) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(filePath))
	return strings.TrimRight(encoded, "=")
}

// NewFileMetadataDocument builds the record written after a successful
// (re)index of a file.
func NewFileMetadataDocument(filePath, contentHash string, lastModified time.Time, chunkCount int) *FileMetadataDocument {
	return &FileMetadataDocument{
		ID:            FileMetadataID(filePath),
		FilePath:      filePath,
		ContentHash:   contentHash,
		LastModified:  lastModified,
		ChunkCount:    chunkCount,
		IndexedAt:     time.Now().UTC(),
		FileExtension: strings.ToLower(filepath.Ext(filePath)),
	}
}
