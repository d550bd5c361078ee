package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/gazette/internal/contentservice"
)

// NewRouter creates a chi router with all API routes mounted.
// A non-empty token enables Bearer token auth on every route.
func NewRouter(svc *contentservice.Service, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(token))

	r.Get("/items", h.ListItems)
	r.Get("/items/*", h.GetItem)
	r.Get("/slugs/{slug}", h.FindBySlug)

	r.Get("/collections", h.ListCollections)
	r.Get("/collections/{name}", h.GetCollection)

	r.Get("/search", h.Search)

	return r
}
