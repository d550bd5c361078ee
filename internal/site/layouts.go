package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path"
	"strings"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/parser"
	"github.com/starford/gazette/internal/storage"
)

const maxLayoutDepth = 10

type layout struct {
	name   string
	parent string
	tmpl   *template.Template
}

// layouts holds the parsed layout templates of one build. Every layout can
// call the other include files as named templates, e.g.
// {{ template "partials/header.html" . }}.
type layouts struct {
	byName map[string]*layout
}

// loadLayouts parses includes/**/*.html. Files under layouts/ become page
// layouts; the rest are shared partials. A missing includes directory
// yields an empty set.
func loadLayouts(includesDir string, funcs template.FuncMap) (*layouts, error) {
	ls := &layouts{byName: make(map[string]*layout)}
	if _, err := os.Stat(includesDir); os.IsNotExist(err) {
		return ls, nil
	}
	inc, err := storage.NewFS(includesDir)
	if err != nil {
		return nil, err
	}
	files, err := inc.Glob("**/*.html")
	if err != nil {
		return nil, err
	}

	base := template.New("").Funcs(funcs)
	var layoutFiles []string
	for _, f := range files {
		if strings.HasPrefix(f, "layouts/") {
			layoutFiles = append(layoutFiles, f)
			continue
		}
		data, err := inc.Read(f)
		if err != nil {
			return nil, err
		}
		if _, err := base.New(f).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("site: partial %s: %w", f, err)
		}
	}

	for _, f := range layoutFiles {
		data, err := inc.Read(f)
		if err != nil {
			return nil, err
		}
		res, err := parser.Parse(f, data)
		if err != nil {
			return nil, fmt.Errorf("site: layout %s: %w", f, err)
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.New(f).Parse(res.Body); err != nil {
			return nil, fmt.Errorf("site: layout %s: %w", f, err)
		}
		parent, _ := res.Frontmatter["layout"].(string)
		key := layoutKey(strings.TrimPrefix(f, "layouts/"))
		ls.byName[key] = &layout{name: f, parent: parent, tmpl: t}
	}
	return ls, nil
}

// Has reports whether a layout exists.
func (ls *layouts) Has(name string) bool {
	_, ok := ls.byName[layoutKey(name)]
	return ok
}

// Apply wraps data.Content in the named layout and then in each parent
// layout named by the layouts' own front matter.
func (ls *layouts) Apply(name string, data *PageData) (template.HTML, error) {
	seen := make(map[string]bool)
	for name != "" {
		key := layoutKey(name)
		if seen[key] || len(seen) >= maxLayoutDepth {
			return "", fmt.Errorf("site: layout chain loops at %q", name)
		}
		seen[key] = true

		l, ok := ls.byName[key]
		if !ok {
			return "", fmt.Errorf("site: layout %q: %w", name, apperr.ErrNotFound)
		}
		var buf bytes.Buffer
		if err := l.tmpl.ExecuteTemplate(&buf, l.name, data); err != nil {
			return "", fmt.Errorf("site: layout %q: %w", name, err)
		}
		data.Content = template.HTML(buf.String())
		name = l.parent
	}
	return data.Content, nil
}

// layoutKey normalizes "layouts/post.njk", "post.html" and "post" to "post".
func layoutKey(name string) string {
	name = strings.TrimPrefix(path.Clean(strings.TrimSpace(name)), "layouts/")
	return strings.TrimSuffix(name, path.Ext(name))
}
