// Package testutil provides shared test helpers for content trees and index databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/gazette/internal/index"
	"github.com/starford/gazette/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gazette-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent writes files (relative path to content) into a temporary
// source directory and returns its root and a storage provider over it.
func TestContent(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for rel, body := range files {
		if err := store.Write(rel, []byte(body)); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir, store
}

// IndexedContent writes files and syncs them into a fresh index.
func IndexedContent(t *testing.T, files map[string]string) *index.DB {
	t.Helper()
	db := TestDB(t)
	_, store := TestContent(t, files)
	if _, err := index.Sync(db, store, QuietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return db
}

// QuietLogger discards all log output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// SampleSite is a small content tree covering every collection.
var SampleSite = map[string]string{
	"posts/2021-03-01-first.md":        "---\ntitle: First Post\ncategory: News\nauthor: jane\ntags: [go, web]\n---\nHello uniqueterm.",
	"posts/2021-04-01-second.md":       "---\ntitle: Second Post\ncategory: news\nauthor: jane\ntags: [go]\n---\nSecond body.",
	"posts/2099-01-01-future.md":       "---\ntitle: Future\ncategory: news\n---\nLater.",
	"posts/2021-05-01-draft.md":        "---\ntitle: Draft\ndraft: true\n---\nHidden.",
	"categories/news.md":               "---\nname: News\nslug: news\n---\n",
	"authors/jane.md":                  "---\nname: Jane Doe\nslug: jane\nstaff: true\n---\n",
	"newsletter/2021-06-01-issue-1.md": "---\ntitle: Issue 1\n---\nIssue.",
	"staff-picks/pick.md":              "---\ntitle: Pick\nslug: pick\n---\nPicked.",
}
