//go:build sqlite_fts5

package index

import (
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM items_fts`).Scan(&count); err != nil {
		t.Fatalf("items_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := ItemRow{
		Path:     "posts/fts.md",
		URL:      "/posts/fts/",
		Title:    "FTS Post",
		Checksum: "f1",
		Tags:     []string{"search"},
		Body:     "Gazette renders powerful static pages.",
	}
	if err := db.UpsertItem(row); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "posts/fts.md" || results[0].URL != "/posts/fts/" {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DiacriticsFolded(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertItem(ItemRow{Path: "cafe.md", Checksum: "c", Body: "Meet at the café."})

	results, err := db.Search("cafe", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %+v, want café to match cafe", results)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertItem(ItemRow{Path: "gone.md", Checksum: "g", Body: "vanishing content"})
	_ = db.DeleteItem("gone.md")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.md" {
			t.Error("deleted item still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertItem(ItemRow{Path: "evo.md", Title: "Old", Checksum: "1", Body: "original text"})
	_ = db.UpsertItem(ItemRow{Path: "evo.md", Title: "New", Checksum: "2", Body: "replacement text"})

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
