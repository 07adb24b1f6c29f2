package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// FileItem represents a file discovered during enumeration, together
// with its extracted text content. It is produced by the enumeration
// and extraction stage and is read-only to the chunking pipeline.
type FileItem struct {
	// Path is the full path to the file.
	Path string

	// RelativePath is the path relative to the source folder, kept for
	// display and metadata purposes.
	RelativePath string

	// Size is the file size in bytes.
	Size int64

	// LastWriteTimeUtc is the last modification time in UTC.
	LastWriteTimeUtc time.Time

	// FileHash is a fingerprint of the full file content, used for
	// change detection.
	FileHash string

	// ExtractedContent is the plain text extracted from the file.
	// May contain page markers of the form "[Page N]" for paginated
	// formats. Empty until extraction has run.
	ExtractedContent string

	// ContentMetadata holds free-form key/value pairs produced by the
	// extraction stage (author, title, sheet names, ...).
	ContentMetadata map[string]string

	// AclGroups lists access-control group names that may read this
	// file. Optional.
	AclGroups []string
}

// Extension returns the lower-cased file extension including the dot.
func (f *FileItem) Extension() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

// FileName returns the file name without its directory.
func (f *FileItem) FileName() string {
	return filepath.Base(f.Path)
}

// SourcePath returns the path used for provenance: the relative path
// when known, otherwise the full path.
func (f *FileItem) SourcePath() string {
	if f.RelativePath != "" {
		return f.RelativePath
	}
	return f.Path
}
