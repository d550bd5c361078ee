// Package contentservice answers read-only queries over the indexed content
// tree and its collections. It backs both the HTTP API and the MCP server.
package contentservice

import (
	"context"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/gazette/internal/collections"
	"github.com/starford/gazette/internal/index"
	"github.com/starford/gazette/internal/models"
)

// ItemDetail is the full representation of a content item.
type ItemDetail struct {
	Path        string         `json:"path"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Date        *time.Time     `json:"date,omitempty"`
	Tags        []string       `json:"tags"`
	Draft       bool           `json:"draft"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Body        string         `json:"body"`
	Checksum    string         `json:"checksum"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ItemSummary is a lightweight item in a list response.
type ItemSummary struct {
	Path  string     `json:"path"`
	URL   string     `json:"url"`
	Title string     `json:"title"`
	Date  *time.Time `json:"date,omitempty"`
	Tags  []string   `json:"tags"`
}

// CollectionInfo names a collection and its current size.
type CollectionInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Service coordinates index reads and collection building.
type Service struct {
	db       index.ContentIndex
	now      func() time.Time
	builders []collections.Option
}

// NewService creates a content service. now supplies the build instant
// used for live filtering; nil means time.Now.
func NewService(db index.ContentIndex, now func() time.Time, opts ...collections.Option) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, now: now, builders: opts}
}

// GetItem returns one item by input path.
func (s *Service) GetItem(_ context.Context, path string) (*ItemDetail, error) {
	it, err := s.db.GetItem(path)
	if err != nil {
		return nil, err
	}
	return detail(it), nil
}

// FindBySlug returns the item registered under slug; the earliest item in
// loader order wins on duplicates.
func (s *Service) FindBySlug(_ context.Context, slug string) (*ItemDetail, error) {
	it, err := s.db.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	return detail(it), nil
}

// ListItems returns items in loader order whose path matches glob (all
// items when glob is empty), paginated by limit and offset.
func (s *Service) ListItems(_ context.Context, glob string, limit, offset int) ([]ItemSummary, int, error) {
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return nil, 0, fmt.Errorf("contentservice: invalid glob %q", glob)
	}
	items, err := s.db.Items()
	if err != nil {
		return nil, 0, err
	}
	if glob != "" {
		items = collections.FilterByGlob(items, glob)
	}
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	out := make([]ItemSummary, 0, end-offset)
	for _, it := range items[offset:end] {
		out = append(out, summary(it))
	}
	return out, total, nil
}

// Collections lists every collection with its size as of now.
func (s *Service) Collections(_ context.Context) ([]CollectionInfo, error) {
	items, err := s.db.Items()
	if err != nil {
		return nil, err
	}
	sizes := s.builder().All(items).Sizes()
	out := make([]CollectionInfo, 0, len(sizes))
	for _, name := range collections.Names() {
		out = append(out, CollectionInfo{Name: name, Size: sizes[name]})
	}
	return out, nil
}

// Collection builds one named collection. Unknown names return
// apperr.ErrUnknownCollection.
func (s *Service) Collection(_ context.Context, name string) (any, error) {
	items, err := s.db.Items()
	if err != nil {
		return nil, err
	}
	return s.builder().Get(name, items)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(results), nil
}

func (s *Service) builder() *collections.Builder {
	return collections.New(s.now(), s.builders...)
}

func detail(it *models.Item) *ItemDetail {
	return &ItemDetail{
		Path:        it.InputPath,
		URL:         it.URL,
		Title:       it.Title(),
		Slug:        it.Slug(),
		Date:        datePtr(it),
		Tags:        nonNilSlice(it.Tags()),
		Draft:       it.Draft(),
		Frontmatter: it.Data,
		Body:        it.Body,
		Checksum:    it.Checksum,
		UpdatedAt:   it.ModTime,
	}
}

func summary(it *models.Item) ItemSummary {
	return ItemSummary{
		Path:  it.InputPath,
		URL:   it.URL,
		Title: it.Title(),
		Date:  datePtr(it),
		Tags:  nonNilSlice(it.Tags()),
	}
}

func datePtr(it *models.Item) *time.Time {
	if !it.HasDate() {
		return nil
	}
	d := it.Date
	return &d
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
