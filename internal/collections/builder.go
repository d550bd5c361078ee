// Package collections assembles named, ordered views over the loaded content items.
package collections

import (
	"fmt"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/models"
	"github.com/starford/gazette/internal/parser"
)

// Collection names.
const (
	Posts           = "posts"
	Categories      = "categories"
	CategoriesPaged = "categoriesPaged"
	CategoriesPosts = "categoriesPosts"
	Authors         = "authors"
	AuthorsStaff    = "authorsStaff"
	AuthorsPosts    = "authorsPosts"
	AuthorsPaged    = "authorsPaged"
	TagList         = "tagList"
	TagsPaged       = "tagsPaged"
	Newsletter      = "newsletter"
	StaffPicks      = "staffPicks"
	Memoized        = "memoized"
)

// Glob patterns, relative to the content root.
const (
	PostsGlob      = "posts/**/*.md"
	CategoriesGlob = "categories/**/*.md"
	AuthorsGlob    = "authors/**/*.md"
	NewsletterGlob = "newsletter/**/*.md"
	StaffPicksGlob = "staff-picks/**/*.md"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// reservedTags never appear in tagList.
var reservedTags = map[string]struct{}{
	"all":   {},
	"nav":   {},
	"post":  {},
	"posts": {},
}

// Names returns every collection name in registration order.
func Names() []string {
	return []string{
		Posts, Categories, CategoriesPaged, CategoriesPosts,
		Authors, AuthorsStaff, AuthorsPosts, AuthorsPaged,
		TagList, TagsPaged, Newsletter, StaffPicks, Memoized,
	}
}

// Builder derives collections from the full item set. The build instant is
// captured once at construction; every live filter uses it.
type Builder struct {
	now      time.Time
	pageSize int
	lang     language.Tag
}

// Option configures a Builder.
type Option func(*Builder)

// WithPageSize sets the pagination chunk size. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.pageSize = n
		}
	}
}

// WithLanguage sets the collation language used for name ordering.
func WithLanguage(tag language.Tag) Option {
	return func(b *Builder) {
		b.lang = tag
	}
}

// New creates a Builder that treats now as the build instant.
func New(now time.Time, opts ...Option) *Builder {
	b := &Builder{
		now:      now,
		pageSize: DefaultPageSize,
		lang:     language.English,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Live reports whether an item is published as of the build instant:
// it has a date not after now and is not a draft.
func (b *Builder) Live(it *models.Item) bool {
	return it.HasDate() && !it.Date.After(b.now) && !it.Draft()
}

// FilterByGlob returns the items whose input path matches pattern,
// preserving input order.
func FilterByGlob(items []*models.Item, pattern string) []*models.Item {
	out := make([]*models.Item, 0)
	for _, it := range items {
		if ok, err := doublestar.Match(pattern, it.InputPath); err == nil && ok {
			out = append(out, it)
		}
	}
	return out
}

// Posts returns live posts, newest first.
func (b *Builder) Posts(items []*models.Item) []*models.Item {
	out := b.live(FilterByGlob(items, PostsGlob))
	slices.Reverse(out)
	return out
}

// Categories returns category pages sorted by name.
func (b *Builder) Categories(items []*models.Item) []*models.Item {
	return b.sortByName(FilterByGlob(items, CategoriesGlob))
}

// Authors returns author pages sorted by name.
func (b *Builder) Authors(items []*models.Item) []*models.Item {
	return b.sortByName(FilterByGlob(items, AuthorsGlob))
}

// AuthorsStaff returns the authors flagged as staff, in name order.
func (b *Builder) AuthorsStaff(items []*models.Item) []*models.Item {
	out := make([]*models.Item, 0)
	for _, it := range b.Authors(items) {
		if it.Staff() {
			out = append(out, it)
		}
	}
	return out
}

// Newsletter returns live newsletter issues with the loader order reversed.
// This is not an explicit date sort.
func (b *Builder) Newsletter(items []*models.Item) []*models.Item {
	out := b.live(FilterByGlob(items, NewsletterGlob))
	slices.Reverse(out)
	return out
}

// StaffPicks returns staff picks in loader order.
func (b *Builder) StaffPicks(items []*models.Item) []*models.Item {
	return FilterByGlob(items, StaffPicksGlob)
}

// Memoized indexes every item by slug. The first item in loader order
// wins when slugs collide.
func (b *Builder) Memoized(items []*models.Item) map[string]*models.Item {
	out := make(map[string]*models.Item, len(items))
	for _, it := range items {
		slug := it.Slug()
		if slug == "" {
			continue
		}
		if _, dup := out[slug]; !dup {
			out[slug] = it
		}
	}
	return out
}

// Get returns one collection by name.
func (b *Builder) Get(name string, items []*models.Item) (any, error) {
	switch name {
	case Posts:
		return b.Posts(items), nil
	case Categories:
		return b.Categories(items), nil
	case CategoriesPaged:
		return b.CategoriesPaged(items), nil
	case CategoriesPosts:
		return b.CategoriesPosts(items), nil
	case Authors:
		return b.Authors(items), nil
	case AuthorsStaff:
		return b.AuthorsStaff(items), nil
	case AuthorsPosts:
		return b.AuthorsPosts(items), nil
	case AuthorsPaged:
		return b.AuthorsPaged(items), nil
	case TagList:
		return b.TagList(items), nil
	case TagsPaged:
		return b.TagsPaged(items), nil
	case Newsletter:
		return b.Newsletter(items), nil
	case StaffPicks:
		return b.StaffPicks(items), nil
	case Memoized:
		return b.Memoized(items), nil
	}
	return nil, fmt.Errorf("collections: %q: %w", name, apperr.ErrUnknownCollection)
}

// Set holds every collection assembled for one build.
type Set struct {
	Posts           []*models.Item
	Categories      []*models.Item
	CategoriesPosts []Group
	CategoriesPaged []Page
	Authors         []*models.Item
	AuthorsStaff    []*models.Item
	AuthorsPosts    []Group
	AuthorsPaged    []Page
	TagList         []string
	TagsPaged       []Page
	Newsletter      []*models.Item
	StaffPicks      []*models.Item
	Memoized        map[string]*models.Item
}

// All assembles every collection.
func (b *Builder) All(items []*models.Item) *Set {
	return &Set{
		Posts:           b.Posts(items),
		Categories:      b.Categories(items),
		CategoriesPosts: b.CategoriesPosts(items),
		CategoriesPaged: b.CategoriesPaged(items),
		Authors:         b.Authors(items),
		AuthorsStaff:    b.AuthorsStaff(items),
		AuthorsPosts:    b.AuthorsPosts(items),
		AuthorsPaged:    b.AuthorsPaged(items),
		TagList:         b.TagList(items),
		TagsPaged:       b.TagsPaged(items),
		Newsletter:      b.Newsletter(items),
		StaffPicks:      b.StaffPicks(items),
		Memoized:        b.Memoized(items),
	}
}

// Sizes returns the length of every collection keyed by name.
func (s *Set) Sizes() map[string]int {
	return map[string]int{
		Posts:           len(s.Posts),
		Categories:      len(s.Categories),
		CategoriesPosts: len(s.CategoriesPosts),
		CategoriesPaged: len(s.CategoriesPaged),
		Authors:         len(s.Authors),
		AuthorsStaff:    len(s.AuthorsStaff),
		AuthorsPosts:    len(s.AuthorsPosts),
		AuthorsPaged:    len(s.AuthorsPaged),
		TagList:         len(s.TagList),
		TagsPaged:       len(s.TagsPaged),
		Newsletter:      len(s.Newsletter),
		StaffPicks:      len(s.StaffPicks),
		Memoized:        len(s.Memoized),
	}
}

func (b *Builder) live(items []*models.Item) []*models.Item {
	out := make([]*models.Item, 0, len(items))
	for _, it := range items {
		if b.Live(it) {
			out = append(out, it)
		}
	}
	return out
}

// sortByName orders items by locale collation of data.name. Items without
// a name go last; equal keys keep their input order.
func (b *Builder) sortByName(items []*models.Item) []*models.Item {
	out := slices.Clone(items)
	col := b.collator()
	slices.SortStableFunc(out, func(x, y *models.Item) int {
		xn, xok := x.Name()
		yn, yok := y.Name()
		switch {
		case !xok && !yok:
			return 0
		case !xok:
			return 1
		case !yok:
			return -1
		}
		return col.CompareString(xn, yn)
	})
	return out
}

// collator returns a fresh collator; collate.Collator is not safe for
// concurrent use.
func (b *Builder) collator() *collate.Collator {
	return collate.New(b.lang)
}

func matchesKey(value, key string) bool {
	if value == "" || key == "" {
		return false
	}
	return parser.Slugify(value) == parser.Slugify(key)
}
