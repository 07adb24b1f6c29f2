// Package fs provides local file-system adapters: enumeration,
// existence checks, plain-text extraction and change watching.
package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
)

// Ensure Checker implements the interface.
var _ driven.FileChecker = (*Checker)(nil)

// Checker answers existence queries against the local file system.
type Checker struct{}

// NewChecker creates a file checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Exists reports whether path refers to an existing regular file.
// Directories do not count: an indexed path shadowed by a directory is
// treated as gone.
func (c *Checker) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}
