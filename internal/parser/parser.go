// Package parser extracts front matter, dates, tags and permalinks from content files.
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/starford/gazette/internal/models"
)

var filenameDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// dateLayouts are tried in order for string dates in front matter.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Result holds the output of parsing a content file.
type Result struct {
	Frontmatter models.FrontMatter
	Body        string
	Title       string
	Tags        []string
	Date        time.Time
}

// Parse extracts front matter and body from raw file bytes. The date comes
// from front matter when present, otherwise from a YYYY-MM-DD- filename prefix.
func Parse(inputPath string, data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(fm),
		Title:       deriveTitle(fm, body),
	}
	if d, ok := frontmatterDate(fm); ok {
		res.Date = d
	} else if d, ok := filenameDate(inputPath); ok {
		res.Date = d
	}
	return res, nil
}

// splitFrontmatter separates YAML front matter (between leading --- delimiters)
// from the body. If no front matter is found the entire content is body.
func splitFrontmatter(data []byte) (models.FrontMatter, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm models.FrontMatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: keep the whole file as body.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// extractTags collects the front-matter "tags" field, deduplicated.
func extractTags(fm models.FrontMatter) []string {
	if fm == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	switch v := fm["tags"].(type) {
	case string:
		add(v)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	return out
}

// deriveTitle returns the front-matter "title" if present, then "name",
// then the first H1 heading, otherwise empty string.
func deriveTitle(fm models.FrontMatter, body string) string {
	for _, key := range []string{"title", "name"} {
		if s, ok := fm[key].(string); ok && s != "" {
			return s
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func frontmatterDate(fm models.FrontMatter) (time.Time, bool) {
	if fm == nil {
		return time.Time{}, false
	}
	switch v := fm["date"].(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		return ParseDate(v)
	}
	return time.Time{}, false
}

func filenameDate(inputPath string) (time.Time, bool) {
	stem := strings.TrimSuffix(path.Base(inputPath), path.Ext(inputPath))
	m := filenameDateRe.FindStringSubmatch(stem)
	if m == nil {
		return time.Time{}, false
	}
	return ParseDate(m[1])
}

// ParseDate parses s with the supported front-matter layouts. Layouts
// without a zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FileSlug returns the slug of a content file: the file stem without any
// date prefix, or the parent directory name for index files.
func FileSlug(inputPath string) string {
	base := path.Base(inputPath)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "index" {
		dir := path.Base(path.Dir(inputPath))
		if dir == "." || dir == "/" {
			return ""
		}
		return dir
	}
	if m := filenameDateRe.FindStringSubmatch(stem); m != nil {
		return m[2]
	}
	return stem
}

// URL derives the output permalink of a content file. A string
// "permalink" front-matter field wins; otherwise the URL mirrors the
// input directory with the file slug as the last segment.
func URL(inputPath string, fm models.FrontMatter) string {
	if p, ok := fm["permalink"].(string); ok && strings.TrimSpace(p) != "" {
		p = strings.TrimSpace(p)
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		return p
	}

	dir := path.Dir(inputPath)
	stem := strings.TrimSuffix(path.Base(inputPath), path.Ext(inputPath))
	if stem == "index" {
		if dir == "." {
			return "/"
		}
		return "/" + dir + "/"
	}
	slug := FileSlug(inputPath)
	if dir == "." {
		return "/" + slug + "/"
	}
	return "/" + path.Join(dir, slug) + "/"
}

var slugDashRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, folds diacritics and joins the remaining
// alphanumeric runs with single dashes.
func Slugify(s string) string {
	// transform chains carry state and are built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Trim(slugDashRe.ReplaceAllString(folded, "-"), "-")
}
