package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockEmbedder implements driven.EmbeddingProvider with configurable
// per-chunk failures.
type mockEmbedder struct {
	available bool
	model     string
	dims      int

	// failFor marks chunk IDs whose embedding should fail.
	failFor map[string]bool

	// err aborts every call when set.
	err error

	singleCalls int
	batchCalls  int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		available: true,
		model:     "test-embed",
		dims:      4,
		failFor:   make(map[string]bool),
	}
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, chunk *domain.TextChunk) (driven.EmbeddingResult, error) {
	m.singleCalls++
	if m.err != nil {
		return driven.EmbeddingResult{}, m.err
	}
	if m.failFor[chunk.ID] {
		return driven.EmbeddingFailure("embedding refused"), nil
	}
	return driven.EmbeddingSuccess([]float32{0.1, 0.2, 0.3, 0.4}, m.model, time.Millisecond), nil
}

func (m *mockEmbedder) GenerateBatchEmbeddings(ctx context.Context, chunks []*domain.TextChunk) ([]driven.EmbeddingResult, error) {
	m.batchCalls++
	if m.err != nil {
		return nil, m.err
	}
	results := make([]driven.EmbeddingResult, len(chunks))
	for i, chunk := range chunks {
		if m.failFor[chunk.ID] {
			results[i] = driven.EmbeddingFailure("embedding refused")
			continue
		}
		results[i] = driven.EmbeddingSuccess([]float32{0.1, 0.2, 0.3, 0.4}, m.model, time.Millisecond)
	}
	return results, nil
}

func (m *mockEmbedder) IsAvailable(context.Context) bool { return m.available }
func (m *mockEmbedder) ModelName() string                { return m.model }
func (m *mockEmbedder) VectorDimensions() int            { return m.dims }

// mockIndex implements driven.DocumentIndex with injectable failures.
// Happy-path tests use the in-memory adapter instead.
type mockIndex struct {
	available bool

	ensureErr error
	deleteErr error
	pathsErr  error

	sourcePaths map[string]int
	docs        []*domain.ChunkDocument
	deletedFor  []string
	custom      map[string]map[string]any
	customErr   error
	getErr      error
}

func newMockIndex() *mockIndex {
	return &mockIndex{
		available:   true,
		sourcePaths: make(map[string]int),
		custom:      make(map[string]map[string]any),
	}
}

func (m *mockIndex) EnsureIndexExists(context.Context) error { return m.ensureErr }

func (m *mockIndex) EnsureCustomIndexExists(context.Context, string, map[string]any) error {
	return m.ensureErr
}

func (m *mockIndex) IndexDocument(_ context.Context, doc *domain.ChunkDocument) error {
	m.docs = append(m.docs, doc)
	return nil
}

func (m *mockIndex) IndexDocumentsBatch(_ context.Context, docs []*domain.ChunkDocument) (int, error) {
	m.docs = append(m.docs, docs...)
	return len(docs), nil
}

func (m *mockIndex) DeleteDocumentsBySourceFile(_ context.Context, sourceFile string) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deletedFor = append(m.deletedFor, sourceFile)
	count := m.sourcePaths[sourceFile]
	delete(m.sourcePaths, sourceFile)
	return count, nil
}

func (m *mockIndex) GetAllSourceFilePaths(context.Context) (map[string]int, error) {
	if m.pathsErr != nil {
		return nil, m.pathsErr
	}
	paths := make(map[string]int, len(m.sourcePaths))
	for k, v := range m.sourcePaths {
		paths[k] = v
	}
	return paths, nil
}

func (m *mockIndex) GetIndexStats(context.Context) (*domain.IndexStats, error) {
	if m.pathsErr != nil {
		return nil, m.pathsErr
	}
	return &domain.IndexStats{DocumentCount: int64(len(m.docs))}, nil
}

func (m *mockIndex) IndexDocumentToCustomIndex(_ context.Context, indexName, id string, doc any) error {
	if m.customErr != nil {
		return m.customErr
	}
	if _, ok := m.custom[indexName]; !ok {
		m.custom[indexName] = make(map[string]any)
	}
	m.custom[indexName][id] = doc
	return nil
}

func (m *mockIndex) GetDocumentByID(_ context.Context, indexName, id string, out any) error {
	if m.getErr != nil {
		return m.getErr
	}
	records, ok := m.custom[indexName]
	if !ok {
		return domain.ErrNotFound
	}
	stored, ok := records[id]
	if !ok {
		return domain.ErrNotFound
	}
	record, ok := stored.(*domain.FileMetadataDocument)
	if !ok {
		return domain.ErrInvalidInput
	}
	if target, ok := out.(*domain.FileMetadataDocument); ok {
		*target = *record
	}
	return nil
}

func (m *mockIndex) DeleteDocumentByID(_ context.Context, indexName, id string) error {
	if records, ok := m.custom[indexName]; ok {
		delete(records, id)
	}
	return nil
}

func (m *mockIndex) IsAvailable(context.Context) bool { return m.available }

// mockChecker implements driven.FileChecker against a fixed path set.
type mockChecker struct {
	existing map[string]bool
	errFor   map[string]error
}

func newMockChecker(existing ...string) *mockChecker {
	c := &mockChecker{
		existing: make(map[string]bool),
		errFor:   make(map[string]error),
	}
	for _, path := range existing {
		c.existing[path] = true
	}
	return c
}

func (m *mockChecker) Exists(path string) (bool, error) {
	if err := m.errFor[path]; err != nil {
		return false, err
	}
	return m.existing[path], nil
}

// mockEnumerator implements driven.FileEnumerator over a fixed list.
type mockEnumerator struct {
	items []domain.FileItem
	err   error
}

func (m *mockEnumerator) Enumerate(ctx context.Context, _, _ []string) (<-chan domain.FileItem, <-chan error) {
	items := make(chan domain.FileItem)
	errs := make(chan error, 1)
	go func() {
		defer close(items)
		defer close(errs)
		for _, item := range m.items {
			select {
			case <-ctx.Done():
				return
			case items <- item:
			}
		}
		if m.err != nil {
			errs <- m.err
		}
	}()
	return items, errs
}

// mockChunker implements driven.Chunker for dispatcher tests.
type mockChunker struct {
	types  []string
	chunks []*domain.TextChunk
	err    error

	called      bool
	gotMetadata map[string]any
	gotTarget   int
	gotOverlap  int
}

func (m *mockChunker) SupportedContentTypes() []string { return m.types }

func (m *mockChunker) CanChunk(contentType string) bool {
	for _, t := range m.types {
		if t == contentType {
			return true
		}
	}
	return false
}

func (m *mockChunker) Chunk(_ context.Context, _ string, metadata map[string]any, targetSize, overlap int) ([]*domain.TextChunk, error) {
	m.called = true
	m.gotMetadata = metadata
	m.gotTarget = targetSize
	m.gotOverlap = overlap
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// testChunk builds a minimal chunk with provenance set.
func testChunk(content, sourceFile string) *domain.TextChunk {
	return &domain.TextChunk{
		ID:          uuid.NewString(),
		Content:     content,
		ContentHash: domain.HashContent(content),
		SourceFile:  sourceFile,
		CreatedAt:   time.Now().UTC(),
	}
}

// testChunks builds n chunks for one source file.
func testChunks(n int, sourceFile string) []*domain.TextChunk {
	chunks := make([]*domain.TextChunk, n)
	for i := range chunks {
		chunks[i] = testChunk("chunk content", sourceFile)
		chunks[i].Position.ChunkIndex = i
		chunks[i].Position.TotalChunks = n
	}
	return chunks
}
