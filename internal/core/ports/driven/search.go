package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SearchEngine provides full-text search over segments.
// Backed by SQLite FTS5 (BM25 ranking).
type SearchEngine interface {
	// Search performs a keyword search and returns the best segments.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// QueryRunner executes read-only SQL against the document store.
// Used by the agent's sql_query tool.
type QueryRunner interface {
	// Query runs a single SELECT statement and returns at most maxRows rows.
	// Statements that would modify the database fail with domain.ErrInvalidInput.
	Query(ctx context.Context, query string, maxRows int) (*domain.QueryResult, error)
}
