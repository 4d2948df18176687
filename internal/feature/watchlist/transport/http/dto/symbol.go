// Package dto defines data transfer objects for the watchlist HTTP API.
package dto

// SymbolItem represents a symbol in the API response.
// It contains only the public-facing fields needed by clients.
type SymbolItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TrackRequest is the body of POST /admin/symbols.
type TrackRequest struct {
	Code string `json:"code" binding:"required,ticker"`
	Name string `json:"name" binding:"max=255"`
}
