package driving

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SearchService finds speech passages by keyword.
type SearchService interface {
	// Search ranks segments matching query, narrowed by the country and
	// year filters in opts. Matched terms are bracketed in Highlight.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
