package pdf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanChunk(t *testing.T) {
	c := New()

	assert.True(t, c.CanChunk("application/pdf"))
	assert.False(t, c.CanChunk("text/plain"))
}

func TestChunkPages(t *testing.T) {
	c := New()
	ctx := context.Background()

	t.Run("one chunk per small page", func(t *testing.T) {
		content := "[Page 1]\nIntro text.\n[Page 2]\nMore text here.\n[Page 3]\nEnding."
		chunks, err := c.Chunk(ctx, content, nil, 200, 20)
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		assert.Equal(t, "Intro text.", chunks[0].Content)
		assert.Equal(t, "More text here.", chunks[1].Content)
		assert.Equal(t, "Ending.", chunks[2].Content)

		for i, chunk := range chunks {
			assert.Equal(t, i+1, chunk.Position.Page)
			assert.Equal(t, i, chunk.Position.ChunkIndex)
			assert.Equal(t, 3, chunk.Position.TotalChunks)
			assert.Equal(t, i+1, chunk.Metadata["page_number"])
		}
	})

	t.Run("two short pages give two chunks", func(t *testing.T) {
		chunks, err := c.Chunk(ctx, "[Page 1]\nHello world.\n[Page 2]\nGoodbye world.", nil, 1200, 200)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, 1, chunks[0].Position.Page)
		assert.Equal(t, 2, chunks[1].Position.Page)
	})

	t.Run("empty pages are dropped", func(t *testing.T) {
		content := "[Page 1]\nSome text.\n[Page 2]\n\n[Page 3]\nLast page."
		chunks, err := c.Chunk(ctx, content, nil, 200, 20)
		require.NoError(t, err)
		require.Len(t, chunks, 2)

		assert.Equal(t, 1, chunks[0].Position.Page)
		assert.Equal(t, 3, chunks[1].Position.Page)
	})

	t.Run("markerless input is a single page one", func(t *testing.T) {
		chunks, err := c.Chunk(ctx, "Just some extracted text.", nil, 200, 20)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, 1, chunks[0].Position.Page)
		assert.Equal(t, 1, chunks[0].Metadata["page_number"])
	})

	t.Run("oversized page splits without crossing the boundary", func(t *testing.T) {
		content := "[Page 1]\nalpha bravo charlie. delta echo foxtrot. golf hotel india\n[Page 2]\nshort tail"
		chunks, err := c.Chunk(ctx, content, nil, 25, 10)
		require.NoError(t, err)
		require.Len(t, chunks, 4)

		for _, chunk := range chunks[:3] {
			assert.Equal(t, 1, chunk.Position.Page)
			assert.NotContains(t, chunk.Content, "short tail")
		}
		assert.Equal(t, 2, chunks[3].Position.Page)
		assert.Equal(t, "short tail", chunks[3].Content)

		// Overlap seeding stays within the page.
		assert.True(t, strings.HasPrefix(chunks[1].Content, "charlie "))
	})

	t.Run("chunk indexes run across pages", func(t *testing.T) {
		content := "[Page 4]\nFirst.\n[Page 5]\nSecond."
		chunks, err := c.Chunk(ctx, content, nil, 200, 20)
		require.NoError(t, err)
		require.Len(t, chunks, 2)

		assert.Equal(t, 0, chunks[0].Position.ChunkIndex)
		assert.Equal(t, 1, chunks[1].Position.ChunkIndex)
		assert.Equal(t, 4, chunks[0].Position.Page)
		assert.Equal(t, 5, chunks[1].Position.Page)
	})
}

func TestChunkEdgeCases(t *testing.T) {
	c := New()

	t.Run("empty content", func(t *testing.T) {
		chunks, err := c.Chunk(context.Background(), "  \n ", nil, 200, 20)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		chunks, err := c.Chunk(ctx, "[Page 1]\nSome text.", nil, 200, 20)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, chunks)
	})
}

func TestExtractPages(t *testing.T) {
	t.Run("keeps marker page numbers", func(t *testing.T) {
		pages := extractPages("[Page 2]\nsecond\n[Page 7]\nseventh")
		require.Len(t, pages, 2)
		assert.Equal(t, 2, pages[0].number)
		assert.Equal(t, "second", pages[0].content)
		assert.Equal(t, 7, pages[1].number)
		assert.Equal(t, "seventh", pages[1].content)
	})

	t.Run("text before the first marker is ignored", func(t *testing.T) {
		pages := extractPages("preamble\n[Page 1]\nbody")
		require.Len(t, pages, 1)
		assert.Equal(t, "body", pages[0].content)
	})
}
