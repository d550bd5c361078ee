package collections

import (
	"path"
	"slices"
	"strconv"

	"github.com/starford/gazette/internal/models"
	"github.com/starford/gazette/internal/parser"
)

// Group pairs a taxonomy term with the live posts filed under it.
// Key is the term slug for categories and authors and the tag itself for
// tags. Item is the term page and is nil for tags.
type Group struct {
	Key   string
	Slug  string
	Item  *models.Item
	Posts []*models.Item
}

// PageHrefs holds the URLs of the neighbouring pages of a paged listing.
type PageHrefs struct {
	First    string
	Last     string
	Previous string
	Next     string
}

// Page is one fixed-size chunk of a group's posts. Number is 1-based.
type Page struct {
	Key    string
	Slug   string
	Item   *models.Item
	Number int
	Total  int
	URL    string
	Items  []*models.Item
	Hrefs  PageHrefs
}

// CategoriesPosts groups live posts under each category, in category order.
// A post belongs to a category when its category field slugifies to the
// category's slug.
func (b *Builder) CategoriesPosts(items []*models.Item) []Group {
	posts := b.Posts(items)
	cats := b.Categories(items)
	out := make([]Group, 0, len(cats))
	for _, c := range cats {
		g := Group{Key: c.Slug(), Slug: parser.Slugify(c.Slug()), Item: c, Posts: make([]*models.Item, 0)}
		for _, p := range posts {
			if matchesKey(p.Category(), c.Slug()) {
				g.Posts = append(g.Posts, p)
			}
		}
		out = append(out, g)
	}
	return out
}

// AuthorsPosts groups live posts under each author, in author order.
func (b *Builder) AuthorsPosts(items []*models.Item) []Group {
	posts := b.Posts(items)
	authors := b.Authors(items)
	out := make([]Group, 0, len(authors))
	for _, a := range authors {
		g := Group{Key: a.Slug(), Slug: parser.Slugify(a.Slug()), Item: a, Posts: make([]*models.Item, 0)}
		for _, p := range posts {
			if matchesKey(p.Author(), a.Slug()) {
				g.Posts = append(g.Posts, p)
			}
		}
		out = append(out, g)
	}
	return out
}

// TagList returns the unique tags of live posts, reserved tags excluded,
// in collation order.
func (b *Builder) TagList(items []*models.Item) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range b.Posts(items) {
		for _, t := range p.Tags() {
			if _, reserved := reservedTags[t]; reserved {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	col := b.collator()
	slices.SortStableFunc(out, col.CompareString)
	return out
}

// TagsPosts groups live posts under each tag of TagList.
func (b *Builder) TagsPosts(items []*models.Item) []Group {
	posts := b.Posts(items)
	tags := b.TagList(items)
	out := make([]Group, 0, len(tags))
	for _, t := range tags {
		g := Group{Key: t, Slug: parser.Slugify(t), Posts: make([]*models.Item, 0)}
		for _, p := range posts {
			if p.HasTag(t) {
				g.Posts = append(g.Posts, p)
			}
		}
		out = append(out, g)
	}
	return out
}

// CategoriesPaged paginates each category's posts.
func (b *Builder) CategoriesPaged(items []*models.Item) []Page {
	return b.paginate(b.CategoriesPosts(items), "/categories/")
}

// AuthorsPaged paginates each author's posts.
func (b *Builder) AuthorsPaged(items []*models.Item) []Page {
	return b.paginate(b.AuthorsPosts(items), "/authors/")
}

// TagsPaged paginates each tag's posts.
func (b *Builder) TagsPaged(items []*models.Item) []Page {
	return b.paginate(b.TagsPosts(items), "/tags/")
}

// paginate chunks every group into pages of pageSize. A group with no posts
// still yields one empty page so its listing exists.
func (b *Builder) paginate(groups []Group, prefix string) []Page {
	out := make([]Page, 0, len(groups))
	for _, g := range groups {
		base := prefix + g.Slug + "/"
		if g.Item != nil && g.Item.URL != "" {
			base = g.Item.URL
		}
		chunks := Chunk(g.Posts, b.pageSize)
		total := len(chunks)
		for i, chunk := range chunks {
			n := i + 1
			p := Page{
				Key:    g.Key,
				Slug:   g.Slug,
				Item:   g.Item,
				Number: n,
				Total:  total,
				URL:    PageURL(base, n),
				Items:  chunk,
				Hrefs: PageHrefs{
					First: PageURL(base, 1),
					Last:  PageURL(base, total),
				},
			}
			if n > 1 {
				p.Hrefs.Previous = PageURL(base, n-1)
			}
			if n < total {
				p.Hrefs.Next = PageURL(base, n+1)
			}
			out = append(out, p)
		}
	}
	return out
}

// Chunk splits items into consecutive slices of size n; the last may be
// shorter. An empty input yields a single empty chunk.
func Chunk(items []*models.Item, n int) [][]*models.Item {
	if n < 1 {
		n = DefaultPageSize
	}
	if len(items) == 0 {
		return [][]*models.Item{{}}
	}
	out := make([][]*models.Item, 0, (len(items)+n-1)/n)
	for start := 0; start < len(items); start += n {
		end := min(start+n, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

// PageURL returns the URL of page n of a listing rooted at base.
func PageURL(base string, n int) string {
	if n <= 1 {
		return base
	}
	return path.Join(base, "page", strconv.Itoa(n)) + "/"
}
