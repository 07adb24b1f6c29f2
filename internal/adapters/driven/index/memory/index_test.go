package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

func chunkDoc(id, sourceFile string) *domain.ChunkDocument {
	return &domain.ChunkDocument{
		ID:         id,
		Content:    "content of " + id,
		SourceFile: sourceFile,
	}
}

func TestIndexDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("single and batch writes land", func(t *testing.T) {
		ix := NewIndex()
		require.NoError(t, ix.IndexDocument(ctx, chunkDoc("c1", "a.txt")))

		n, err := ix.IndexDocumentsBatch(ctx, []*domain.ChunkDocument{
			chunkDoc("c2", "a.txt"),
			chunkDoc("c3", "b.txt"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, ix.Documents(), 3)
	})

	t.Run("write replaces by id", func(t *testing.T) {
		ix := NewIndex()
		require.NoError(t, ix.IndexDocument(ctx, chunkDoc("c1", "a.txt")))
		replacement := chunkDoc("c1", "a.txt")
		replacement.Content = "updated"
		require.NoError(t, ix.IndexDocument(ctx, replacement))

		docs := ix.Documents()
		require.Len(t, docs, 1)
		assert.Equal(t, "updated", docs[0].Content)
	})

	t.Run("delete by source file", func(t *testing.T) {
		ix := NewIndex()
		_, err := ix.IndexDocumentsBatch(ctx, []*domain.ChunkDocument{
			chunkDoc("c1", "a.txt"),
			chunkDoc("c2", "a.txt"),
			chunkDoc("c3", "b.txt"),
		})
		require.NoError(t, err)

		deleted, err := ix.DeleteDocumentsBySourceFile(ctx, "a.txt")
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		counts, err := ix.GetAllSourceFilePaths(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"b.txt": 1}, counts)
	})

	t.Run("stats count documents", func(t *testing.T) {
		ix := NewIndex()
		require.NoError(t, ix.IndexDocument(ctx, chunkDoc("c1", "a.txt")))

		stats, err := ix.GetIndexStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.DocumentCount)
		assert.False(t, stats.LastUpdated.IsZero())
	})
}

func TestCustomIndexRecords(t *testing.T) {
	ctx := context.Background()

	type record struct {
		FilePath    string `json:"filePath"`
		ContentHash string `json:"contentHash"`
	}

	t.Run("round trips through json", func(t *testing.T) {
		ix := NewIndex()
		require.NoError(t, ix.IndexDocumentToCustomIndex(ctx, "meta", "id1",
			record{FilePath: "a.txt", ContentHash: "abc"}))

		var got record
		require.NoError(t, ix.GetDocumentByID(ctx, "meta", "id1", &got))
		assert.Equal(t, record{FilePath: "a.txt", ContentHash: "abc"}, got)
	})

	t.Run("unknown record", func(t *testing.T) {
		ix := NewIndex()
		require.NoError(t, ix.EnsureCustomIndexExists(ctx, "meta", nil))

		var got record
		assert.ErrorIs(t, ix.GetDocumentByID(ctx, "meta", "missing", &got), domain.ErrNotFound)
	})

	t.Run("unknown index", func(t *testing.T) {
		ix := NewIndex()
		var got record
		assert.ErrorIs(t, ix.GetDocumentByID(ctx, "nowhere", "id1", &got), domain.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		ix := NewIndex()
		require.NoError(t, ix.IndexDocumentToCustomIndex(ctx, "meta", "id1", record{FilePath: "a.txt"}))
		require.NoError(t, ix.DeleteDocumentByID(ctx, "meta", "id1"))
		require.NoError(t, ix.DeleteDocumentByID(ctx, "meta", "id1"))

		var got record
		assert.ErrorIs(t, ix.GetDocumentByID(ctx, "meta", "id1", &got), domain.ErrNotFound)
	})
}
