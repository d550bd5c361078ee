package contentservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/collections"
	"github.com/starford/gazette/internal/models"
	"github.com/starford/gazette/internal/testutil"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.IndexedContent(t, testutil.SampleSite)
	return NewService(db, func() time.Time { return fixedNow })
}

func TestGetItem(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	it, err := svc.GetItem(ctx, "posts/2021-03-01-first.md")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if it.Title != "First Post" || it.URL != "/posts/first/" || it.Slug != "first" {
		t.Errorf("item = %+v", it)
	}
	if it.Date == nil || it.Date.Format("2006-01-02") != "2021-03-01" {
		t.Errorf("date = %v", it.Date)
	}
	if diff := cmp.Diff([]string{"go", "web"}, it.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	if _, err := svc.GetItem(ctx, "nope.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetItem_UndatedHasNilDate(t *testing.T) {
	svc := newService(t)
	it, err := svc.GetItem(context.Background(), "authors/jane.md")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if it.Date != nil {
		t.Errorf("date = %v, want nil", it.Date)
	}
	if len(it.Tags) != 0 || it.Tags == nil {
		t.Errorf("tags = %#v, want empty non-nil", it.Tags)
	}
}

func TestFindBySlug(t *testing.T) {
	svc := newService(t)
	it, err := svc.FindBySlug(context.Background(), "jane")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if it.Path != "authors/jane.md" {
		t.Errorf("path = %q", it.Path)
	}
}

func TestListItems(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	items, total, err := svc.ListItems(ctx, collections.PostsGlob, 2, 1)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	got := []string{items[0].Path, items[1].Path}
	want := []string{"posts/2021-04-01-second.md", "posts/2021-05-01-draft.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}

	all, total, err := svc.ListItems(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("ListItems all: %v", err)
	}
	if total != len(testutil.SampleSite) || len(all) != total {
		t.Errorf("len = %d total = %d, want %d", len(all), total, len(testutil.SampleSite))
	}

	past, _, err := svc.ListItems(ctx, "", 5, 100)
	if err != nil || len(past) != 0 {
		t.Errorf("offset past end = %v, %v", past, err)
	}
}

func TestListItems_InvalidGlob(t *testing.T) {
	svc := newService(t)
	if _, _, err := svc.ListItems(context.Background(), "posts/[", 0, 0); err == nil {
		t.Error("expected error for invalid glob")
	}
}

func TestCollections(t *testing.T) {
	svc := newService(t)
	infos, err := svc.Collections(context.Background())
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if len(infos) != len(collections.Names()) {
		t.Fatalf("len = %d, want %d", len(infos), len(collections.Names()))
	}
	sizes := make(map[string]int, len(infos))
	for _, ci := range infos {
		sizes[ci.Name] = ci.Size
	}
	if sizes[collections.Posts] != 2 {
		t.Errorf("posts = %d, want 2", sizes[collections.Posts])
	}
	if sizes[collections.Newsletter] != 1 || sizes[collections.StaffPicks] != 1 {
		t.Errorf("sizes = %v", sizes)
	}
}

func TestCollection(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	v, err := svc.Collection(ctx, collections.Posts)
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	posts, ok := v.([]*models.Item)
	if !ok {
		t.Fatalf("type = %T", v)
	}
	if len(posts) != 2 || posts[0].InputPath != "posts/2021-04-01-second.md" {
		t.Errorf("posts not newest first: %v", posts)
	}

	if _, err := svc.Collection(ctx, "bogus"); !errors.Is(err, apperr.ErrUnknownCollection) {
		t.Errorf("err = %v, want ErrUnknownCollection", err)
	}
}

func TestCollection_PageSizeOption(t *testing.T) {
	db := testutil.IndexedContent(t, testutil.SampleSite)
	svc := NewService(db, func() time.Time { return fixedNow }, collections.WithPageSize(1))

	v, err := svc.Collection(context.Background(), collections.CategoriesPaged)
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	pages := v.([]collections.Page)
	if len(pages) != 2 || pages[1].URL != "/categories/news/page/2/" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestSearch(t *testing.T) {
	svc := newService(t)
	results, err := svc.Search(context.Background(), "uniqueterm", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "posts/2021-03-01-first.md" {
		t.Errorf("results = %+v", results)
	}

	none, err := svc.Search(context.Background(), "zzznomatch", 10)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("no-match = %#v, %v", none, err)
	}
}
