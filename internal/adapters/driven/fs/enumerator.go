package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure Enumerator implements the interface.
var _ driven.FileEnumerator = (*Enumerator)(nil)

// Enumerator walks source folders recursively and streams matching
// files. Hidden files and directories are skipped; per-file access
// errors are logged and skipped, never fatal to the walk.
type Enumerator struct{}

// NewEnumerator creates a file enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

// Enumerate streams FileItems for every file under roots whose
// extension matches. An empty extension list matches everything. Both
// channels are closed when the walk ends; the error channel carries at
// most one terminal error.
func (e *Enumerator) Enumerate(ctx context.Context, roots, extensions []string) (<-chan domain.FileItem, <-chan error) {
	items := make(chan domain.FileItem)
	errs := make(chan error, 1)

	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	go func() {
		defer close(items)
		defer close(errs)

		for _, root := range roots {
			if ctx.Err() != nil {
				errs <- ctx.Err()
				return
			}
			if err := e.walkRoot(ctx, root, extSet, items); err != nil {
				if ctx.Err() != nil {
					errs <- err
					return
				}
				logger.Error("Enumeration of %s failed: %v", root, err)
			}
		}
	}()

	return items, errs
}

func (e *Enumerator) walkRoot(ctx context.Context, root string, extSet map[string]struct{}, items chan<- domain.FileItem) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		logger.Warn("Source folder does not exist: %s", root)
		return nil
	}

	logger.Info("Enumerating files in folder: %s", root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Debug("Skipping inaccessible entry %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if len(extSet) > 0 {
			if _, ok := extSet[ext]; !ok {
				return nil
			}
		}

		item, err := NewFileItem(path, root)
		if err != nil {
			logger.Warn("Skipping unreadable file %s: %v", path, err)
			return nil
		}

		select {
		case items <- *item:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
}

// NewFileItem builds a FileItem for a file on disk, including its
// content hash. Root may be empty when the file was not discovered by
// a folder walk.
func NewFileItem(path, root string) (*domain.FileItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	hash, err := hashFile(path)
	if err != nil {
		return nil, err
	}

	relative := filepath.Base(path)
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			relative = rel
		}
	}

	return &domain.FileItem{
		Path:             path,
		RelativePath:     relative,
		Size:             info.Size(),
		LastWriteTimeUtc: info.ModTime().UTC(),
		FileHash:         hash,
		ContentMetadata:  make(map[string]string),
	}, nil
}

// hashFile returns the hex SHA-256 of the file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
