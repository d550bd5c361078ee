package transforms

import (
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// HTMLMin collapses whitespace and strips comments from HTML documents,
// including inline styles and scripts.
type HTMLMin struct {
	m *minify.M
}

// NewHTMLMin creates the minifier. Document and end tags are kept.
func NewHTMLMin() *HTMLMin {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return &HTMLMin{m: m}
}

// Name implements Transform.
func (h *HTMLMin) Name() string { return "htmlmin" }

// Apply implements Transform.
func (h *HTMLMin) Apply(_ string, content []byte) ([]byte, error) {
	return h.m.Bytes("text/html", content)
}
