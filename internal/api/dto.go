package api

import (
	"github.com/starford/gazette/internal/contentservice"
	"github.com/starford/gazette/internal/index"
)

// ItemDetail is the full item response type (aliased from the domain layer).
type ItemDetail = contentservice.ItemDetail

// ItemSummary is a lightweight item in a list response (aliased from the domain layer).
type ItemSummary = contentservice.ItemSummary

// CollectionInfo names a collection and its size (aliased from the domain layer).
type CollectionInfo = contentservice.CollectionInfo

// ItemListResponse wraps paginated item listings.
type ItemListResponse struct {
	Items []ItemSummary `json:"items" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// CollectionListResponse lists every collection.
type CollectionListResponse struct {
	Collections []CollectionInfo `json:"collections" validate:"required"`
}

// CollectionResponse carries one built collection. Items is a list of
// items, groups or pages, or a slug map for memoized.
type CollectionResponse struct {
	Name  string `json:"name" example:"posts" validate:"required"`
	Items any    `json:"items" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
