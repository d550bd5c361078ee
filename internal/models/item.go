// Package models defines the domain types for Gazette.
package models

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// FrontMatter is the YAML metadata block at the top of a content file.
type FrontMatter map[string]interface{}

// Item represents one source document in the content tree.
type Item struct {
	InputPath string      `json:"input_path"`
	FileSlug  string      `json:"file_slug"`
	URL       string      `json:"url"`
	Date      time.Time   `json:"date"`
	Data      FrontMatter `json:"data,omitempty"`
	Body      string      `json:"-"`
	Checksum  string      `json:"checksum"`
	ModTime   time.Time   `json:"mod_time"`
}

// HasDate reports whether the item carries a usable date.
func (it *Item) HasDate() bool {
	return !it.Date.IsZero()
}

// String returns the front-matter field key when it is a non-empty string.
func (it *Item) String(key string) (string, bool) {
	if it.Data == nil {
		return "", false
	}
	v, ok := it.Data[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case fmt.Stringer:
		return s.String(), true
	case int, int64, float64:
		return fmt.Sprint(s), true
	}
	return "", false
}

// Bool returns the front-matter field key as a boolean. Absent or
// non-boolean values are false.
func (it *Item) Bool(key string) bool {
	if it.Data == nil {
		return false
	}
	b, ok := it.Data[key].(bool)
	return ok && b
}

// Name returns data.name.
func (it *Item) Name() (string, bool) { return it.String("name") }

// Title returns data.title, falling back to data.name.
func (it *Item) Title() string {
	if t, ok := it.String("title"); ok {
		return t
	}
	n, _ := it.Name()
	return n
}

// Slug returns data.slug, falling back to the file slug.
func (it *Item) Slug() string {
	if s, ok := it.String("slug"); ok {
		return s
	}
	return it.FileSlug
}

// Draft reports data.draft.
func (it *Item) Draft() bool { return it.Bool("draft") }

// Staff reports data.staff.
func (it *Item) Staff() bool { return it.Bool("staff") }

// Author returns data.author.
func (it *Item) Author() string {
	s, _ := it.String("author")
	return s
}

// Category returns data.category.
func (it *Item) Category() string {
	s, _ := it.String("category")
	return s
}

// Layout returns data.layout.
func (it *Item) Layout() string {
	s, _ := it.String("layout")
	return s
}

// Tags returns data.tags. A single string is treated as a one-element list.
func (it *Item) Tags() []string {
	if it.Data == nil {
		return nil
	}
	var out []string
	switch v := it.Data["tags"].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, raw := range v {
			if s, ok := raw.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// HasTag reports whether tag is among the item's tags.
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// Unpublished reports whether front matter sets permalink: false.
func (it *Item) Unpublished() bool {
	if it.Data == nil {
		return false
	}
	b, ok := it.Data["permalink"].(bool)
	return ok && !b
}

// OutputPath returns the file path, relative to the output directory,
// that the rendered item is written to.
func (it *Item) OutputPath() string {
	u := strings.TrimPrefix(it.URL, "/")
	if u == "" || strings.HasSuffix(u, "/") {
		return path.Join(u, "index.html")
	}
	return u
}

// FileMeta is a lightweight description of a source file returned by list operations.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
