package parser

import (
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ndate: 2023-04-05\ntags:\n  - go\n  - gazette\n---\n# Hello\nBody text.\n")
	r, err := Parse("posts/hello.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) != 2 || r.Tags[0] != "go" || r.Tags[1] != "gazette" {
		t.Errorf("tags = %v, want [go gazette]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
	want := time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Errorf("date = %v, want %v", r.Date, want)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse("page.md", []byte("# Just a heading\nSome text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
	if !r.Date.IsZero() {
		t.Errorf("date = %v, want zero", r.Date)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse("x.md", []byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestParse_StringDateWithZone(t *testing.T) {
	r, err := Parse("x.md", []byte("---\ndate: \"2022-01-02T10:00:00+02:00\"\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2022, 1, 2, 8, 0, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Errorf("date = %v, want %v", r.Date, want)
	}
}

func TestParse_FilenameDateFallback(t *testing.T) {
	r, err := Parse("newsletter/2021-06-01-issue-one.md", []byte("---\nname: Issue\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Date.Format("2006-01-02") != "2021-06-01" {
		t.Errorf("date = %v", r.Date)
	}
	if r.Title != "Issue" {
		t.Errorf("title = %q, want name fallback", r.Title)
	}
}

func TestExtractTags_DedupAndScalar(t *testing.T) {
	tags := extractTags(map[string]any{"tags": []any{"a", " a ", "b", 3}})
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("tags = %v, want [a b]", tags)
	}
	tags = extractTags(map[string]any{"tags": "solo"})
	if len(tags) != 1 || tags[0] != "solo" {
		t.Errorf("tags = %v, want [solo]", tags)
	}
}

func TestFileSlug(t *testing.T) {
	cases := map[string]string{
		"posts/hello-world.md":      "hello-world",
		"posts/2021-01-02-dated.md": "dated",
		"authors/jane/index.md":     "jane",
		"index.md":                  "",
		"staff-picks/pick.html":     "pick",
	}
	for in, want := range cases {
		if got := FileSlug(in); got != want {
			t.Errorf("FileSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestURL(t *testing.T) {
	cases := []struct {
		in   string
		fm   map[string]any
		want string
	}{
		{"index.md", nil, "/"},
		{"about.md", nil, "/about/"},
		{"posts/2021-01-02-hello.md", nil, "/posts/hello/"},
		{"authors/jane/index.md", nil, "/authors/jane/"},
		{"404.md", map[string]any{"permalink": "404.html"}, "/404.html"},
	}
	for _, c := range cases {
		if got := URL(c.in, c.fm); got != c.want {
			t.Errorf("URL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":      "hello-world",
		"  Café au lait! ": "cafe-au-lait",
		"Go/Rust & C++":    "go-rust-c",
		"already-a-slug":   "already-a-slug",
		"":                 "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
