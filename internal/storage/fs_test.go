package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempTree(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempTree(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempTree(t)
	if err := s.Write("a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("sub/page.html", []byte("<p>c</p>"))
	_ = s.Write("readme.txt", []byte("not content"))
	_ = s.Write(".git/x.md", []byte("hidden"))
	_ = s.Write("_includes/layouts/base.html", []byte("layout"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[1].Path != "sub/b.md" {
		t.Errorf("items[1].Path = %q, want slash-separated relative path", items[1].Path)
	}
}

func TestGlob(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("categories/b.md", []byte("b"))
	_ = s.Write("categories/nested/a.md", []byte("a"))
	_ = s.Write("posts/c.md", []byte("c"))

	got, err := s.Glob("./categories/**/*.md")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(got) != 2 || got[0] != "categories/b.md" || got[1] != "categories/nested/a.md" {
		t.Errorf("Glob = %v", got)
	}

	if _, err := s.Glob("categories/[.md"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempTree(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	// Verify that if we read during a write the old content is intact
	// (the rename is atomic on POSIX).
	s := tempTree(t)
	original := []byte("original content")
	_ = s.Write("atomic.md", original)

	// Overwrite with new content.
	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".gazette-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/gazette-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "gazette-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestIgnored(t *testing.T) {
	cases := map[string]bool{
		"posts/a.md":                  false,
		"_includes/layouts/base.html": true,
		".git/HEAD":                   true,
		"_redirects":                  false,
	}
	for in, want := range cases {
		if got := Ignored(in); got != want {
			t.Errorf("Ignored(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExcluded(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFS(dir, "admin", "./drafts/")
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Write("admin/index.html", []byte("<html></html>"))
	_ = f.Write("drafts/wip.md", []byte("wip"))
	_ = f.Write("administration.md", []byte("not excluded"))

	cases := map[string]bool{
		"admin/index.html":  true,
		"drafts/wip.md":     true,
		"administration.md": false,
		"_data/paths.json":  true,
	}
	for in, want := range cases {
		if got := f.Excluded(in); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", in, got, want)
		}
	}

	metas, err := f.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 1 || metas[0].Path != "administration.md" {
		t.Errorf("List = %+v, want only administration.md", metas)
	}
}
