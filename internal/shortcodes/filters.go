package shortcodes

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/net/html"
)

// WordsPerMinute is the reading speed assumed by ReadingTime.
const WordsPerMinute = 200

// Limit returns the first n elements of a slice or array. n beyond the
// length returns the whole slice; negative n returns an empty slice.
func Limit(v any, n int) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return v, nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("limit: unsupported type %T", v)
	}
	n = max(0, min(n, rv.Len()))
	return rv.Slice(0, n).Interface(), nil
}

// Filename returns the last slash-separated segment of p.
func Filename(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

// Console returns a debug dump of v.
func Console(v any) string {
	return dumper.Sdump(v)
}

// WordCount returns the number of whitespace-separated words in the text
// content of an HTML fragment. Script and style bodies are skipped.
func WordCount(fragment string) int {
	z := html.NewTokenizer(strings.NewReader(fragment))
	words := 0
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return words
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				words += len(strings.Fields(string(z.Text())))
			}
		}
	}
}

func isRawText(tag string) bool {
	return tag == "script" || tag == "style"
}

// ReadingTime estimates the reading time of an HTML fragment as
// "N min read", rounding up and never below one minute.
func ReadingTime(fragment string) string {
	minutes := int(math.Ceil(float64(WordCount(fragment)) / WordsPerMinute))
	return fmt.Sprintf("%d min read", max(1, minutes))
}

// AbsoluteURL resolves p against base. p is returned unchanged when either
// fails to parse.
func AbsoluteURL(p, base string) string {
	b, err := url.Parse(base)
	if err != nil {
		return p
	}
	ref, err := url.Parse(p)
	if err != nil {
		return p
	}
	return b.ResolveReference(ref).String()
}
