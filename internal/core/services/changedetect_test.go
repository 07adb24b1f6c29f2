package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jklebucki/rag-collector/internal/adapters/driven/index/memory"
	"github.com/jklebucki/rag-collector/internal/core/domain"
)

func TestShouldReindex(t *testing.T) {
	ctx := context.Background()
	modTime := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("unknown file needs indexing", func(t *testing.T) {
		d := NewChangeDetector(memory.NewIndex())
		assert.True(t, d.ShouldReindex(ctx, "/docs/new.txt", "abc", modTime))
	})

	t.Run("unchanged file is skipped", func(t *testing.T) {
		d := NewChangeDetector(memory.NewIndex())
		d.RecordIndexed(ctx, "/docs/a.txt", "abc", modTime, 3)

		assert.False(t, d.ShouldReindex(ctx, "/docs/a.txt", "abc", modTime))
	})

	t.Run("hash change forces reindex", func(t *testing.T) {
		d := NewChangeDetector(memory.NewIndex())
		d.RecordIndexed(ctx, "/docs/a.txt", "abc", modTime, 3)

		assert.True(t, d.ShouldReindex(ctx, "/docs/a.txt", "def", modTime))
	})

	t.Run("timestamp change forces reindex even with same hash", func(t *testing.T) {
		d := NewChangeDetector(memory.NewIndex())
		d.RecordIndexed(ctx, "/docs/a.txt", "abc", modTime, 3)

		assert.True(t, d.ShouldReindex(ctx, "/docs/a.txt", "abc", modTime.Add(time.Minute)))
	})

	t.Run("lookup failure defaults to reindex", func(t *testing.T) {
		index := newMockIndex()
		index.getErr = errors.New("backend down")
		d := NewChangeDetector(index)

		assert.True(t, d.ShouldReindex(ctx, "/docs/a.txt", "abc", modTime))
	})
}

func TestRecordIndexed(t *testing.T) {
	ctx := context.Background()
	modTime := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("record is readable back", func(t *testing.T) {
		index := memory.NewIndex()
		d := NewChangeDetector(index)

		d.RecordIndexed(ctx, "/docs/a.txt", "abc", modTime, 7)

		var record domain.FileMetadataDocument
		err := index.GetDocumentByID(ctx, MetadataIndexName, domain.FileMetadataID("/docs/a.txt"), &record)
		require.NoError(t, err)
		assert.Equal(t, "/docs/a.txt", record.FilePath)
		assert.Equal(t, "abc", record.ContentHash)
		assert.Equal(t, 7, record.ChunkCount)
		assert.True(t, record.LastModified.Equal(modTime))
	})

	t.Run("write failure is swallowed", func(t *testing.T) {
		index := newMockIndex()
		index.customErr = errors.New("backend down")
		d := NewChangeDetector(index)

		// Must not panic or propagate.
		d.RecordIndexed(ctx, "/docs/a.txt", "abc", modTime, 7)
	})

	t.Run("rerecording replaces the previous record", func(t *testing.T) {
		index := memory.NewIndex()
		d := NewChangeDetector(index)

		d.RecordIndexed(ctx, "/docs/a.txt", "abc", modTime, 3)
		d.RecordIndexed(ctx, "/docs/a.txt", "def", modTime.Add(time.Hour), 5)

		var record domain.FileMetadataDocument
		err := index.GetDocumentByID(ctx, MetadataIndexName, domain.FileMetadataID("/docs/a.txt"), &record)
		require.NoError(t, err)
		assert.Equal(t, "def", record.ContentHash)
		assert.Equal(t, 5, record.ChunkCount)
	})
}

func TestDeleteMetadata(t *testing.T) {
	ctx := context.Background()
	modTime := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("removes the record", func(t *testing.T) {
		index := memory.NewIndex()
		d := NewChangeDetector(index)
		d.RecordIndexed(ctx, "/docs/a.txt", "abc", modTime, 3)

		require.NoError(t, d.DeleteMetadata(ctx, "/docs/a.txt"))
		assert.True(t, d.ShouldReindex(ctx, "/docs/a.txt", "abc", modTime))
	})

	t.Run("deleting an unknown path is not an error", func(t *testing.T) {
		d := NewChangeDetector(memory.NewIndex())
		assert.NoError(t, d.DeleteMetadata(ctx, "/docs/never-indexed.txt"))
	})
}
