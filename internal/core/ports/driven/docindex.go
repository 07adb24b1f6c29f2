package driven

import (
	"context"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

// DocumentIndex is the search/storage backend holding chunk documents
// and their embedding vectors. Change-detection records live in the
// same backend under a custom index distinct from chunks. Adapters
// exist for Weaviate and for an in-memory index used in tests.
type DocumentIndex interface {
	// EnsureIndexExists creates the chunk index if missing.
	EnsureIndexExists(ctx context.Context) error

	// IndexDocument writes a single chunk document.
	IndexDocument(ctx context.Context, doc *domain.ChunkDocument) error

	// IndexDocumentsBatch writes documents in bulk and returns the
	// number the backend actually accepted, which may be less than
	// len(docs).
	IndexDocumentsBatch(ctx context.Context, docs []*domain.ChunkDocument) (int, error)

	// DeleteDocumentsBySourceFile removes every chunk document whose
	// source matches the given path and returns the deleted count.
	DeleteDocumentsBySourceFile(ctx context.Context, sourceFile string) (int, error)

	// GetAllSourceFilePaths returns the distinct source-file paths
	// currently referenced by the index, each with its chunk count.
	// This is an aggregation, not a full document scan.
	GetAllSourceFilePaths(ctx context.Context) (map[string]int, error)

	// GetIndexStats reports document count, size and last update time.
	GetIndexStats(ctx context.Context) (*domain.IndexStats, error)

	// IsAvailable reports whether the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// EnsureCustomIndexExists creates an auxiliary index if missing.
	// The schema is backend-specific and may be nil.
	EnsureCustomIndexExists(ctx context.Context, indexName string, schema map[string]any) error

	// IndexDocumentToCustomIndex writes a document into an auxiliary
	// index under the given ID, overwriting any existing document.
	IndexDocumentToCustomIndex(ctx context.Context, indexName, id string, doc any) error

	// GetDocumentByID fetches a document from an auxiliary index and
	// decodes it into out. Returns domain.ErrNotFound when absent.
	GetDocumentByID(ctx context.Context, indexName, id string, out any) error

	// DeleteDocumentByID removes a document from an auxiliary index.
	// Deleting a missing document is not an error.
	DeleteDocumentByID(ctx context.Context, indexName, id string) error
}
