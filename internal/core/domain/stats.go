package domain

import "time"

// IndexStats describes the state of the chunk index as reported by the
// backend.
type IndexStats struct {
	DocumentCount  int64
	IndexSizeBytes int64
	LastUpdated    time.Time
}

// IndexingStats combines backend index statistics with the embedding
// configuration in use.
type IndexingStats struct {
	TotalDocuments   int64
	IndexSizeBytes   int64
	EmbeddingModel   string
	VectorDimensions int
	LastUpdated      time.Time
}
