// Package memory provides an in-memory document index for tests and
// local development.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.DocumentIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.DocumentIndex.
// Custom index records are stored as JSON so reads go through the same
// encode/decode path as a real backend.
type Index struct {
	mu      sync.RWMutex
	ready   bool
	docs    map[string]domain.ChunkDocument
	custom  map[string]map[string][]byte
	updated time.Time
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{
		docs:   make(map[string]domain.ChunkDocument),
		custom: make(map[string]map[string][]byte),
	}
}

// EnsureIndexExists marks the chunk index ready.
func (ix *Index) EnsureIndexExists(_ context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ready = true
	return nil
}

// EnsureCustomIndexExists allocates a named record collection.
func (ix *Index) EnsureCustomIndexExists(_ context.Context, indexName string, _ map[string]any) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.custom[indexName]; !ok {
		ix.custom[indexName] = make(map[string][]byte)
	}
	return nil
}

// IndexDocument stores or replaces a chunk document.
func (ix *Index) IndexDocument(_ context.Context, doc *domain.ChunkDocument) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs[doc.ID] = *doc
	ix.updated = time.Now().UTC()
	return nil
}

// IndexDocumentsBatch stores all documents and returns the count.
func (ix *Index) IndexDocumentsBatch(_ context.Context, docs []*domain.ChunkDocument) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, doc := range docs {
		ix.docs[doc.ID] = *doc
	}
	ix.updated = time.Now().UTC()
	return len(docs), nil
}

// DeleteDocumentsBySourceFile removes all documents for a path.
func (ix *Index) DeleteDocumentsBySourceFile(_ context.Context, sourceFile string) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	deleted := 0
	for id, doc := range ix.docs {
		if doc.SourceFile == sourceFile {
			delete(ix.docs, id)
			deleted++
		}
	}
	if deleted > 0 {
		ix.updated = time.Now().UTC()
	}
	return deleted, nil
}

// GetAllSourceFilePaths returns per-file chunk counts.
func (ix *Index) GetAllSourceFilePaths(_ context.Context) (map[string]int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	counts := make(map[string]int)
	for _, doc := range ix.docs {
		counts[doc.SourceFile]++
	}
	return counts, nil
}

// GetIndexStats reports the current document count.
func (ix *Index) GetIndexStats(_ context.Context) (*domain.IndexStats, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return &domain.IndexStats{
		DocumentCount: int64(len(ix.docs)),
		LastUpdated:   ix.updated,
	}, nil
}

// IndexDocumentToCustomIndex stores a record under the given ID.
func (ix *Index) IndexDocumentToCustomIndex(_ context.Context, indexName, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.custom[indexName]; !ok {
		ix.custom[indexName] = make(map[string][]byte)
	}
	ix.custom[indexName][id] = raw
	return nil
}

// GetDocumentByID reads a record into out, or domain.ErrNotFound.
func (ix *Index) GetDocumentByID(_ context.Context, indexName, id string, out any) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	records, ok := ix.custom[indexName]
	if !ok {
		return domain.ErrNotFound
	}
	raw, ok := records[id]
	if !ok {
		return domain.ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

// DeleteDocumentByID removes a record. Idempotent.
func (ix *Index) DeleteDocumentByID(_ context.Context, indexName, id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if records, ok := ix.custom[indexName]; ok {
		delete(records, id)
	}
	return nil
}

// IsAvailable always reports true.
func (ix *Index) IsAvailable(_ context.Context) bool {
	return true
}

// Documents returns a snapshot of all stored chunk documents, for
// assertions in tests.
func (ix *Index) Documents() []domain.ChunkDocument {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	docs := make([]domain.ChunkDocument, 0, len(ix.docs))
	for _, doc := range ix.docs {
		docs = append(docs, doc)
	}
	return docs
}
