// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only Gazette content tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/collections"
	"github.com/starford/gazette/internal/contentservice"
	"github.com/starford/gazette/internal/shortcodes"
)

// FrontMatterURI identifies the front-matter contract resource.
const FrontMatterURI = "gazette://front-matter"

const defaultSearchLimit = 20

// Server wraps the MCP server with Gazette tools.
type Server struct {
	mcp        *server.MCPServer
	svc        *contentservice.Service
	cloudinary shortcodes.Cloudinary
}

// New creates a new MCP server with all Gazette tools registered.
// cloudinaryAccount is the image CDN account used by cloudinary_image.
func New(svc *contentservice.Service, cloudinaryAccount, version string) *Server {
	s := &Server{svc: svc, cloudinary: shortcodes.Cloudinary{Account: cloudinaryAccount}}

	s.mcp = server.NewMCPServer(
		"Gazette",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_collections",
		mcp.WithDescription("List every site collection with its current size."),
	), s.listCollections)

	s.mcp.AddTool(mcp.NewTool("get_collection",
		mcp.WithDescription("Build one named collection exactly as templates see it."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Collection name, e.g. posts, categories, tagList")),
	), s.getCollection)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List content items in loader order, optionally filtered by an input path glob."),
		mcp.WithString("glob", mcp.Description("Glob such as posts/**/*.md (empty for all)")),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Full-text search through item titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("read_item",
		mcp.WithDescription("Read one content item: front matter, body and derived URL."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Input path relative to the source dir (e.g. posts/2021-03-01-hello.md)")),
	), s.readItem)

	s.mcp.AddTool(mcp.NewTool("find_by_slug",
		mcp.WithDescription("Find the item registered under a slug in the memoized collection."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Item slug")),
	), s.findBySlug)

	s.mcp.AddTool(mcp.NewTool("cloudinary_image",
		mcp.WithDescription("Render the responsive <img> markup the cloudinaryImage shortcode produces."),
		mcp.WithString("src", mcp.Required(), mcp.Description("Image URL or asset path")),
		mcp.WithString("alt", mcp.Required(), mcp.Description("Alt text")),
		mcp.WithNumber("width", mcp.Required(), mcp.Description("Intrinsic width in pixels")),
		mcp.WithNumber("height", mcp.Required(), mcp.Description("Intrinsic height in pixels")),
		mcp.WithString("sizes", mcp.Description("sizes attribute")),
		mcp.WithString("loading", mcp.Description("loading attribute, e.g. lazy")),
		mcp.WithString("class", mcp.Description("class attribute")),
	), s.cloudinaryImage)

	s.mcp.AddTool(mcp.NewTool("get_front_matter_contract",
		mcp.WithDescription("Returns the front-matter fields each content section understands. "+
			"Call this before drafting content so collections pick it up."),
	), s.getFrontMatterContract)

	s.mcp.AddResource(
		mcp.NewResource(FrontMatterURI, "Front Matter Contract",
			mcp.WithResourceDescription("Front-matter fields recognised by the Gazette collections."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFrontMatterResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCollections(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.svc.Collections(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(infos)
}

func (s *Server) getCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.svc.Collection(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownCollection) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown collection %q; known: %v", name, collections.Names())), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListItems(ctx, req.GetString("glob", ""), 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", defaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) readItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, err := s.svc.GetItem(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return jsonResult(it)
}

func (s *Server) findBySlug(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, err := s.svc.FindBySlug(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no item with slug %q", slug)), nil
	}
	return jsonResult(it)
}

func (s *Server) cloudinaryImage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.cloudinary.Account == "" {
		return mcp.NewToolResultError("cloudinary account is not configured"), nil
	}
	src, err := req.RequireString("src")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	alt, err := req.RequireString("alt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	width, err := req.RequireInt("width")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	height, err := req.RequireInt("height")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := shortcodes.ImageOptions{
		Sizes:   req.GetString("sizes", ""),
		Loading: req.GetString("loading", ""),
		Class:   req.GetString("class", ""),
	}
	return mcp.NewToolResultText(s.cloudinary.Image(src, alt, width, height, opts)), nil
}

func (s *Server) getFrontMatterContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontMatterContract), nil
}

func (s *Server) readFrontMatterResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FrontMatterURI,
			MIMEType: "text/markdown",
			Text:     FrontMatterContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
