package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/gazette/internal/contentservice"
	"github.com/starford/gazette/internal/testutil"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testServer(t *testing.T, account string) *Server {
	t.Helper()
	db := testutil.IndexedContent(t, testutil.SampleSite)
	svc := contentservice.NewService(db, func() time.Time { return fixedNow })
	return New(svc, account, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_collections":          srv.listCollections,
		"get_collection":            srv.getCollection,
		"list_items":                srv.listItems,
		"search_content":            srv.searchContent,
		"read_item":                 srv.readItem,
		"find_by_slug":              srv.findBySlug,
		"cloudinary_image":          srv.cloudinaryImage,
		"get_front_matter_contract": srv.getFrontMatterContract,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListCollections(t *testing.T) {
	srv := testServer(t, "")
	r := callTool(t, srv, "list_collections", nil)
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	var infos []contentservice.CollectionInfo
	if err := json.Unmarshal([]byte(resultText(r)), &infos); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(infos) != 13 || infos[0].Name != "posts" || infos[0].Size != 2 {
		t.Errorf("infos = %+v", infos)
	}
}

func TestGetCollection(t *testing.T) {
	srv := testServer(t, "")

	r := callTool(t, srv, "get_collection", map[string]interface{}{"name": "tagList"})
	if got := resultText(r); !strings.Contains(got, `"go"`) || !strings.Contains(got, `"web"`) {
		t.Errorf("tagList = %s", got)
	}

	r = callTool(t, srv, "get_collection", map[string]interface{}{"name": "nope"})
	if !r.IsError || !strings.Contains(resultText(r), "unknown collection") {
		t.Errorf("unknown collection result = %+v", r)
	}

	r = callTool(t, srv, "get_collection", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing name")
	}
}

func TestListItems(t *testing.T) {
	srv := testServer(t, "")
	r := callTool(t, srv, "list_items", map[string]interface{}{"glob": "staff-picks/**/*.md"})
	var items []contentservice.ItemSummary
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 || items[0].Path != "staff-picks/pick.md" {
		t.Errorf("items = %+v", items)
	}
}

func TestSearchContent(t *testing.T) {
	srv := testServer(t, "")
	r := callTool(t, srv, "search_content", map[string]interface{}{"query": "uniqueterm", "limit": 5})
	if !strings.Contains(resultText(r), "posts/2021-03-01-first.md") {
		t.Errorf("search = %s", resultText(r))
	}
}

func TestReadItem(t *testing.T) {
	srv := testServer(t, "")

	r := callTool(t, srv, "read_item", map[string]interface{}{"path": "posts/2021-03-01-first.md"})
	var it contentservice.ItemDetail
	if err := json.Unmarshal([]byte(resultText(r)), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.Title != "First Post" || !strings.Contains(it.Body, "uniqueterm") {
		t.Errorf("item = %+v", it)
	}

	r = callTool(t, srv, "read_item", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing item")
	}
}

func TestFindBySlug(t *testing.T) {
	srv := testServer(t, "")
	r := callTool(t, srv, "find_by_slug", map[string]interface{}{"slug": "pick"})
	if !strings.Contains(resultText(r), "staff-picks/pick.md") {
		t.Errorf("find_by_slug = %s", resultText(r))
	}
}

func TestCloudinaryImage(t *testing.T) {
	srv := testServer(t, "demo")
	r := callTool(t, srv, "cloudinary_image", map[string]interface{}{
		"src":     "https://example.com/img/cat.jpg",
		"alt":     "A cat",
		"width":   400,
		"height":  300,
		"loading": "lazy",
	})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	got := resultText(r)
	if !strings.HasPrefix(got, "<img ") || !strings.Contains(got, "/demo/image/upload/") {
		t.Errorf("img = %s", got)
	}
	if !strings.Contains(got, `loading="lazy"`) || !strings.Contains(got, `alt="A cat"`) {
		t.Errorf("img attrs = %s", got)
	}
}

func TestCloudinaryImage_NoAccount(t *testing.T) {
	srv := testServer(t, "")
	r := callTool(t, srv, "cloudinary_image", map[string]interface{}{
		"src": "x.jpg", "alt": "x", "width": 1, "height": 1,
	})
	if !r.IsError {
		t.Error("expected error without an account")
	}
}

func TestFrontMatterResource(t *testing.T) {
	srv := testServer(t, "")
	contents, err := srv.readFrontMatterResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != FrontMatterURI || !strings.Contains(tc.Text, "staff-picks/") {
		t.Errorf("resource = %+v", contents)
	}
	if got := resultText(callTool(t, srv, "get_front_matter_contract", nil)); got != FrontMatterContract {
		t.Error("contract tool and resource differ")
	}
}
