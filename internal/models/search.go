package models

// Scope selects which sides a unified search touches.
type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeDocuments Scope = "documents"
	ScopeImages    Scope = "images"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeAll, ScopeDocuments, ScopeImages:
		return true
	}
	return false
}

// SearchResults holds both sides of a unified search. A side excluded by
// scope is an empty slice, never nil distinguishable from "no hits".
type SearchResults struct {
	Documents []DocResult   `json:"documents"`
	Images    []ImageResult `json:"images"`
}

// Stats aggregates document and image statistics.
type Stats struct {
	Documents  DocumentStats `json:"documents"`
	Images     ImageStats    `json:"images"`
	TotalItems int           `json:"total_items"`
}
