package fs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jklebucki/rag-collector/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collectItems(t *testing.T, items <-chan domain.FileItem, errs <-chan error) []domain.FileItem {
	t.Helper()
	var got []domain.FileItem
	for item := range items {
		got = append(got, item)
	}
	require.NoError(t, <-errs)
	return got
}

func TestCheckerExists(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "content")
	checker := NewChecker()

	t.Run("existing file", func(t *testing.T) {
		ok, err := checker.Exists(path)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		ok, err := checker.Exists(filepath.Join(dir, "gone.txt"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("directory does not count", func(t *testing.T) {
		ok, err := checker.Exists(dir)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEnumerate(t *testing.T) {
	ctx := context.Background()

	t.Run("streams matching files recursively", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, filepath.Join("nested", "b.md"), "bravo")
		writeFile(t, dir, "skip.bin", "binary")

		items, errs := NewEnumerator().Enumerate(ctx, []string{dir}, []string{".txt", ".md"})
		got := collectItems(t, items, errs)
		require.Len(t, got, 2)

		var rels []string
		for _, item := range got {
			rels = append(rels, item.RelativePath)
		}
		sort.Strings(rels)
		assert.Equal(t, []string{"a.txt", filepath.Join("nested", "b.md")}, rels)
	})

	t.Run("empty extension list matches everything", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, "b.bin", "binary")

		items, errs := NewEnumerator().Enumerate(ctx, []string{dir}, nil)
		assert.Len(t, collectItems(t, items, errs), 2)
	})

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "UPPER.TXT", "alpha")

		items, errs := NewEnumerator().Enumerate(ctx, []string{dir}, []string{".txt"})
		assert.Len(t, collectItems(t, items, errs), 1)
	})

	t.Run("hidden entries are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "visible.txt", "alpha")
		writeFile(t, dir, ".hidden.txt", "secret")
		writeFile(t, dir, filepath.Join(".git", "config.txt"), "secret")

		items, errs := NewEnumerator().Enumerate(ctx, []string{dir}, []string{".txt"})
		got := collectItems(t, items, errs)
		require.Len(t, got, 1)
		assert.Equal(t, "visible.txt", got[0].RelativePath)
	})

	t.Run("missing root is skipped without error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha")
		missing := filepath.Join(dir, "does-not-exist")

		items, errs := NewEnumerator().Enumerate(ctx, []string{missing, dir}, []string{".txt"})
		assert.Len(t, collectItems(t, items, errs), 1)
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		items, errs := NewEnumerator().Enumerate(cancelled, []string{dir}, nil)
		for range items {
		}
		assert.ErrorIs(t, <-errs, context.Canceled)
	})
}

func TestNewFileItem(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, filepath.Join("sub", "doc.txt"), "hello world")

	t.Run("fills size hash and relative path", func(t *testing.T) {
		item, err := NewFileItem(path, dir)
		require.NoError(t, err)

		assert.Equal(t, path, item.Path)
		assert.Equal(t, filepath.Join("sub", "doc.txt"), item.RelativePath)
		assert.Equal(t, int64(len("hello world")), item.Size)
		assert.Len(t, item.FileHash, 64)
		assert.False(t, item.LastWriteTimeUtc.IsZero())
	})

	t.Run("hash tracks content", func(t *testing.T) {
		before, err := NewFileItem(path, dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("changed body"), 0o644))
		after, err := NewFileItem(path, dir)
		require.NoError(t, err)

		assert.NotEqual(t, before.FileHash, after.FileHash)
	})

	t.Run("empty root falls back to base name", func(t *testing.T) {
		item, err := NewFileItem(path, "")
		require.NoError(t, err)
		assert.Equal(t, "doc.txt", item.RelativePath)
	})

	t.Run("directory is rejected", func(t *testing.T) {
		_, err := NewFileItem(dir, "")
		assert.Error(t, err)
	})
}

func TestPlainTextExtract(t *testing.T) {
	ctx := context.Background()
	extractor := NewPlainTextExtractor()

	t.Run("supported extensions", func(t *testing.T) {
		assert.Contains(t, extractor.SupportedExtensions(), ".txt")
		assert.Contains(t, extractor.SupportedExtensions(), ".md")
	})

	t.Run("reads content and fills metadata", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "notes.txt", "line one\nline two")

		item, err := NewFileItem(path, dir)
		require.NoError(t, err)
		require.NoError(t, extractor.Extract(ctx, item))

		assert.Equal(t, "line one\nline two", item.ExtractedContent)
		assert.Equal(t, "notes.txt", item.ContentMetadata["file_name"])
		assert.Equal(t, "2", item.ContentMetadata["line_count"])
		assert.Equal(t, "4", item.ContentMetadata["word_count"])
		assert.Equal(t, "17", item.ContentMetadata["character_count"])
	})

	t.Run("rejects invalid utf-8", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.txt")
		require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x41}, 0o644))

		item := &domain.FileItem{Path: path}
		err := extractor.Extract(ctx, item)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("missing file", func(t *testing.T) {
		item := &domain.FileItem{Path: filepath.Join(t.TempDir(), "gone.txt")}
		assert.Error(t, extractor.Extract(ctx, item))
	})
}
