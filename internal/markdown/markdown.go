// Package markdown renders Markdown to HTML with goldmark.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultStyle is the chroma style used for fenced code blocks.
const DefaultStyle = "github"

// Renderer converts Markdown source to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

type options struct {
	footnotes bool
	inserted  bool
	highlight bool
	style     string
}

// Option configures a Renderer.
type Option func(*options)

// WithFootnotes enables [^1] footnotes.
func WithFootnotes() Option { return func(o *options) { o.footnotes = true } }

// WithInserted enables ++inserted++ text.
func WithInserted() Option { return func(o *options) { o.inserted = true } }

// WithHighlighting enables chroma highlighting of fenced code blocks,
// emitting CSS classes rather than inline styles.
func WithHighlighting(style string) Option {
	return func(o *options) {
		o.highlight = true
		if style != "" {
			o.style = style
		}
	}
}

// New creates a Renderer. Raw HTML in the source is always passed through.
func New(opts ...Option) *Renderer {
	o := options{style: DefaultStyle}
	for _, opt := range opts {
		opt(&o)
	}

	var exts []goldmark.Extender
	if o.footnotes {
		exts = append(exts, extension.Footnote)
	}
	if o.inserted {
		exts = append(exts, Ins)
	}
	if o.highlight {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(o.style),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

// Page returns the renderer used for .md content files: footnotes,
// inserted text and code highlighting.
func Page() *Renderer {
	return New(WithFootnotes(), WithInserted(), WithHighlighting(DefaultStyle))
}

// Inline returns the plain renderer behind the markdown filter and the
// note shortcode.
func Inline() *Renderer {
	return New()
}

// Render converts src to HTML. Empty input renders to "".
func (r *Renderer) Render(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: render: %w", err)
	}
	return buf.String(), nil
}
