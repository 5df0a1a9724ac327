// Package search unifies document and image retrieval behind one engine.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/docstore"
	"github.com/hyperjump/kioku/internal/images"
	"github.com/hyperjump/kioku/internal/models"
)

// Engine routes queries to the document and image sides by scope and
// aggregates their statistics.
type Engine struct {
	docs   *docstore.Manager
	images *images.Manager
	logger *zap.Logger
}

// NewEngine creates a unified search engine over both managers.
func NewEngine(docs *docstore.Manager, imgs *images.Manager, logger *zap.Logger) *Engine {
	return &Engine{docs: docs, images: imgs, logger: logger}
}

// Search queries the sides selected by scope. Documents use semantic
// retrieval with an optional exact category filter; images use the query
// as a metadata text filter with the same category. Excluded sides come
// back as empty slices.
func (e *Engine) Search(ctx context.Context, query string, scope models.Scope, category string) (*models.SearchResults, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("unknown search scope %q", scope)
	}

	results := &models.SearchResults{
		Documents: []models.DocResult{},
		Images:    []models.ImageResult{},
	}

	if scope == models.ScopeAll || scope == models.ScopeDocuments {
		docs, err := e.docs.Search(ctx, query, category, 0)
		if err != nil {
			return nil, fmt.Errorf("document search: %w", err)
		}
		results.Documents = docs
	}

	if scope == models.ScopeAll || scope == models.ScopeImages {
		results.Images = e.images.Search(query, category, nil)
	}

	if e.logger != nil {
		e.logger.Debug("search completed",
			zap.String("scope", string(scope)),
			zap.Int("documents", len(results.Documents)),
			zap.Int("images", len(results.Images)),
		)
	}
	return results, nil
}

// Stats gathers both sides' statistics. TotalItems counts stored documents
// plus stored images.
func (e *Engine) Stats() models.Stats {
	docStats := e.docs.Stats()
	imgStats := e.images.Stats()
	return models.Stats{
		Documents:  docStats,
		Images:     imgStats,
		TotalItems: docStats.TotalFiles + imgStats.TotalImages,
	}
}
