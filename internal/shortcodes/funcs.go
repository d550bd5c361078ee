// Package shortcodes provides the template filters and shortcodes: Cloudinary
// images, date formatting, Markdown and a handful of list and URL helpers.
package shortcodes

import (
	"fmt"
	"html/template"
	"time"

	"github.com/starford/gazette/internal/markdown"
	"github.com/starford/gazette/internal/models"
)

// Config carries the site settings the shortcodes depend on.
type Config struct {
	CloudinaryName string
	BaseURL        string
}

// Funcs binds the shortcodes to one build: its configuration, its build
// instant and its memoized slug lookup.
type Funcs struct {
	cloud   Cloudinary
	baseURL string
	now     time.Time
	memo    map[string]*models.Item
	md      *markdown.Renderer
}

// New creates the shortcode set for one build. memo may be nil.
func New(cfg Config, now time.Time, memo map[string]*models.Item) *Funcs {
	if memo == nil {
		memo = map[string]*models.Item{}
	}
	return &Funcs{
		cloud:   Cloudinary{Account: cfg.CloudinaryName},
		baseURL: cfg.BaseURL,
		now:     now,
		memo:    memo,
		md:      markdown.Inline(),
	}
}

// CloudinaryImage renders a responsive image. The optional trailing
// arguments are sizes, loading, class and raw attributes, in that order.
func (f *Funcs) CloudinaryImage(src, alt string, width, height int, rest ...string) template.HTML {
	var opts ImageOptions
	fields := []*string{&opts.Sizes, &opts.Loading, &opts.Class, &opts.Attributes}
	for i, v := range rest {
		if i < len(fields) {
			*fields[i] = v
		}
	}
	return template.HTML(f.cloud.Image(src, alt, width, height, opts))
}

// CloudinaryThumb renders a single fixed-size image.
func (f *Funcs) CloudinaryThumb(src, alt string, width, height int) template.HTML {
	return template.HTML(f.cloud.Thumb(src, alt, width, height))
}

// Markdown renders v with the inline renderer. Missing values and empty
// input yield "".
func (f *Funcs) Markdown(v any) (template.HTML, error) {
	src, err := markdownSource(v)
	if err != nil || src == "" {
		return "", err
	}
	out, err := f.md.Render(src)
	return template.HTML(out), err
}

// Note wraps content, rendered as Markdown, in a post note block. title is
// ignored.
func (f *Funcs) Note(content any, title ...string) (template.HTML, error) {
	src, err := markdownSource(content)
	if err != nil {
		return "", err
	}
	body, err := f.md.Render(src)
	if err != nil {
		return "", err
	}
	return template.HTML(`<div class="post__note">` + body + `</div>`), nil
}

// FindBySlug returns the item registered under slug in the memoized
// collection, or nil.
func (f *Funcs) FindBySlug(slug string) *models.Item {
	return f.memo[slug]
}

// CopyrightYear returns the copyright range ending at the build year.
func (f *Funcs) CopyrightYear() string {
	return CopyrightYear(f.now, CopyrightSince)
}

// AbsoluteURL resolves p against the site base URL.
func (f *Funcs) AbsoluteURL(p string) string {
	return AbsoluteURL(p, f.baseURL)
}

// FuncMap returns every filter and shortcode keyed by its template name.
func (f *Funcs) FuncMap() template.FuncMap {
	return template.FuncMap{
		"cloudinaryImage":  f.CloudinaryImage,
		"cloudinaryThumb":  f.CloudinaryThumb,
		"monthDayYear":     dateFunc(MonthDayYear),
		"fullMonthDayYear": dateFunc(FullMonthDayYear),
		"htmlDate":         dateFunc(HTMLDate),
		"dateToRfc3339":    dateFunc(DateToRFC3339),
		"markdown":         f.Markdown,
		"note":             f.Note,
		"copyrightYear":    f.CopyrightYear,
		"limit":            Limit,
		"filename":         Filename,
		"console":          Console,
		"findBySlug":       f.FindBySlug,
		"readingTime":      readingTimeFunc,
		"absoluteUrl":      f.AbsoluteURL,
		"newestItemDate":   NewestItemDate,
	}
}

// dateFunc adapts a time formatter to the loosely typed values templates
// pass. Missing dates format as "".
func dateFunc(format func(time.Time) string) func(any) (string, error) {
	return func(v any) (string, error) {
		if v == nil {
			return "", nil
		}
		t, ok := toTime(v)
		if !ok {
			if s, isStr := v.(string); isStr && s == "" {
				return "", nil
			}
			if tt, isTime := v.(time.Time); isTime && tt.IsZero() {
				return "", nil
			}
			return "", fmt.Errorf("date filter: cannot format %v (%T)", v, v)
		}
		return format(t), nil
	}
}

// markdownSource extracts Markdown text from a template value. nil stands
// for a missing front-matter key.
func markdownSource(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case template.HTML:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", fmt.Errorf("markdown filter: cannot render %T", v)
}

func readingTimeFunc(v any) string {
	switch s := v.(type) {
	case template.HTML:
		return ReadingTime(string(s))
	case string:
		return ReadingTime(s)
	}
	return ReadingTime(fmt.Sprint(v))
}
