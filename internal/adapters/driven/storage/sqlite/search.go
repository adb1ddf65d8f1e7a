package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// DefaultSearchLimit is used when SearchOptions.Limit is zero.
const DefaultSearchLimit = 20

// Search runs a full-text query over segment content using FTS5 with
// bm25 ranking. Each whitespace-separated term must appear in a hit.
// Returned documents carry no content.
func (s *Store) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	where, args := documentFilterSQL(domain.DocumentFilter{
		CountryCodes: opts.CountryCodes,
		YearFrom:     opts.YearFrom,
		YearTo:       opts.YearTo,
	})

	sqlQuery := `
		SELECT ` + segmentColumns + `,
			d.id, d.uri, d.title, d.metadata, d.created_at,
			bm25(segments_fts) AS score,
			snippet(segments_fts, 0, '[', ']', '...', 24)
		FROM segments_fts
		JOIN segments s ON s.seq = segments_fts.rowid
		JOIN documents d ON d.id = s.document_id
		WHERE segments_fts MATCH ? AND ` + where + `
		ORDER BY score
		LIMIT ?`
	args = append([]any{match}, args...)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching segments: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.SearchResult
		var vectorID *string
		var segMeta, docMeta, createdAt string
		var rank float64

		if err := rows.Scan(
			&r.Segment.ID, &r.Segment.DocumentID, &r.Segment.Content, &r.Segment.Ordinal, &vectorID, &segMeta,
			&r.Document.ID, &r.Document.URI, &r.Document.Title, &docMeta, &createdAt,
			&rank, &r.Highlight,
		); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Segment.VectorID = vectorID
		if err := unmarshalMetadata(segMeta, &r.Segment.Metadata); err != nil {
			return nil, err
		}
		if err := unmarshalMetadata(docMeta, &r.Document.Metadata); err != nil {
			return nil, err
		}
		normaliseNumbers(r.Document.Metadata)
		r.Document.CreatedAt = parseTime(createdAt)
		// bm25 is negative with better matches lower.
		r.Score = -rank
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}

// ftsQuery quotes each term so user input cannot inject FTS5 syntax.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " ")
}

// Query runs a single read-only SELECT (or WITH) statement and returns at
// most maxRows rows. Any other statement fails with domain.ErrInvalidInput.
func (s *Store) Query(ctx context.Context, query string, maxRows int) (*domain.QueryResult, error) {
	stmt, err := readOnlyStatement(query)
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("enabling query_only: %w", err)
	}
	defer conn.ExecContext(context.Background(), "PRAGMA query_only = OFF") //nolint:errcheck

	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &domain.QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) == maxRows {
			result.Truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}

// readOnlyStatement trims a query and rejects anything that is not a
// single SELECT or WITH statement.
func readOnlyStatement(query string) (string, error) {
	stmt := strings.TrimSpace(query)
	stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	if stmt == "" {
		return "", fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if strings.Contains(stmt, ";") {
		return "", fmt.Errorf("%w: only a single statement is allowed", domain.ErrInvalidInput)
	}
	first := strings.ToUpper(strings.Fields(stmt)[0])
	if first != "SELECT" && first != "WITH" {
		return "", fmt.Errorf("%w: only SELECT queries are allowed", domain.ErrInvalidInput)
	}
	return stmt, nil
}
