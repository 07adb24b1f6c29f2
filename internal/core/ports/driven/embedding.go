package driven

import (
	"context"
	"time"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// EmbeddingResult is the outcome of embedding a single chunk. Failures
// are carried as data so that one bad item never aborts a batch.
type EmbeddingResult struct {
	// Success indicates the embedding was generated.
	Success bool

	// Vector is the embedding; empty on failure.
	Vector []float32

	// ModelName is the model that produced the vector.
	ModelName string

	// ErrorMessage describes the failure when Success is false.
	ErrorMessage string

	// Duration is how long the request took.
	Duration time.Duration
}

// Dimensions returns the vector length.
func (r *EmbeddingResult) Dimensions() int {
	return len(r.Vector)
}

// EmbeddingSuccess builds a successful result.
func EmbeddingSuccess(vector []float32, modelName string, duration time.Duration) EmbeddingResult {
	return EmbeddingResult{
		Success:   true,
		Vector:    vector,
		ModelName: modelName,
		Duration:  duration,
	}
}

// EmbeddingFailure builds a failed result.
func EmbeddingFailure(errorMessage string) EmbeddingResult {
	return EmbeddingResult{
		Success:      false,
		ErrorMessage: errorMessage,
	}
}

// EmbeddingProvider converts chunk text into fixed-size vectors for
// similarity search.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models behind an HTTP inference server
type EmbeddingProvider interface {
	// GenerateEmbedding produces an embedding for a single chunk.
	// Provider faults are reported through the result, not an error,
	// except for context cancellation.
	GenerateEmbedding(ctx context.Context, chunk *domain.TextChunk) (EmbeddingResult, error)

	// GenerateBatchEmbeddings produces one result per input chunk, in
	// input order. Per-item failures appear as failed results; the
	// slice length always equals len(chunks).
	GenerateBatchEmbeddings(ctx context.Context, chunks []*domain.TextChunk) ([]EmbeddingResult, error)

	// IsAvailable reports whether the provider is reachable.
	IsAvailable(ctx context.Context) bool

	// ModelName returns the embedding model in use.
	ModelName() string

	// VectorDimensions returns the embedding vector size.
	VectorDimensions() int
}
