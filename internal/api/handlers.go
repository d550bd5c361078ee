package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gazette/internal/apperr"
	"github.com/starford/gazette/internal/contentservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *contentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// itemPath extracts the input path from the URL (everything after /api/items/).
// Supports encoded slashes (e.g. posts%2Fhello.md).
func itemPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListItems handles GET /api/items.
//
//	@Summary		List content items in loader order
//	@Tags			items
//	@Produce		json
//	@Param			glob	query		string	false	"Input path glob, e.g. posts/**/*.md"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	ItemListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListItems(r.Context(), q.Get("glob"), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ItemListResponse{Items: items, Total: total})
}

// GetItem handles GET /api/items/*.
//
//	@Summary		Get a single item by input path
//	@Tags			items
//	@Produce		json
//	@Param			path	path		string	true	"Input path"
//	@Success		200		{object}	ItemDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{path} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	p := itemPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	it, err := h.svc.GetItem(r.Context(), p)
	if err != nil {
		h.writeLookupError(w, "get item", p, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// FindBySlug handles GET /api/slugs/{slug}.
//
//	@Summary		Find an item by slug
//	@Tags			items
//	@Produce		json
//	@Param			slug	path		string	true	"Item slug"
//	@Success		200		{object}	ItemDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/slugs/{slug} [get]
func (h *Handler) FindBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	it, err := h.svc.FindBySlug(r.Context(), slug)
	if err != nil {
		h.writeLookupError(w, "find by slug", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// ListCollections handles GET /api/collections.
//
//	@Summary		List collections with their sizes
//	@Tags			collections
//	@Produce		json
//	@Success		200	{object}	CollectionListResponse
//	@Security		BearerAuth
//	@Router			/collections [get]
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.Collections(r.Context())
	if err != nil {
		slog.Error("list collections failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CollectionListResponse{Collections: infos})
}

// GetCollection handles GET /api/collections/{name}.
//
//	@Summary		Build one named collection
//	@Tags			collections
//	@Produce		json
//	@Param			name	path		string	true	"Collection name"	Enums(posts, categories, categoriesPaged, categoriesPosts, authors, authorsStaff, authorsPosts, authorsPaged, tagList, tagsPaged, newsletter, staffPicks, memoized)
//	@Success		200		{object}	CollectionResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections/{name} [get]
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, err := h.svc.Collection(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownCollection) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown collection"))
			return
		}
		slog.Error("get collection failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CollectionResponse{Name: name, Items: v})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across content
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func (h *Handler) writeLookupError(w http.ResponseWriter, op, key string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error(op+" failed", slog.String("key", key), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
