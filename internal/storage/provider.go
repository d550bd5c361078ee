// Package storage defines the file-tree abstraction used for content sources and build output.
package storage

import "github.com/starford/gazette/internal/models"

// ContentExts are the template formats loaded from the content tree.
var ContentExts = []string{".md", ".html"}

// Provider is the interface for file operations under a root directory.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// List returns metadata for every content file under dir (relative to root).
	List(dir string) ([]models.FileMeta, error)
	// Excluded reports whether a root-relative path is not content:
	// hidden, underscore-prefixed or explicitly excluded directories.
	Excluded(rel string) bool
	// Glob returns root-relative paths matching a doublestar pattern, sorted.
	Glob(pattern string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}
