package index

import "github.com/starford/gazette/internal/models"

// ContentIndex defines the interface for content indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type ContentIndex interface {
	UpsertItem(r ItemRow) error
	DeleteItem(path string) error
	GetChecksum(path string) (string, error)
	GetItem(path string) (*models.Item, error)
	FindBySlug(slug string) (*models.Item, error)
	Items() ([]*models.Item, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ ContentIndex = (*DB)(nil)
