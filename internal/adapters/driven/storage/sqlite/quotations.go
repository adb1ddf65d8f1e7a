package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

var _ driven.QuotationStore = (*Store)(nil)

// SaveQuotations replaces the quotations of one document.
func (s *Store) SaveQuotations(ctx context.Context, documentID string, quotes []domain.Quotation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM quotations WHERE document_id = ?", documentID); err != nil {
			return fmt.Errorf("clearing quotations of %s: %w", documentID, err)
		}
		for _, q := range quotes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO quotations (document_id, figure, text, context, direct, confidence, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, documentID, q.Figure, q.Text, q.Context, q.Direct, q.Confidence, q.Offset)
			if err != nil {
				return fmt.Errorf("saving quotation of %s: %w", documentID, err)
			}
		}
		return nil
	})
}

// ListQuotations returns matching quotations ordered by year, document
// and position.
func (s *Store) ListQuotations(ctx context.Context, filter domain.QuotationFilter) ([]domain.Quotation, error) {
	var conds []string
	var args []any
	if filter.Figure != "" {
		conds = append(conds, "q.figure = ? COLLATE NOCASE")
		args = append(args, filter.Figure)
	}
	if filter.Query != "" {
		conds = append(conds, "instr(lower(q.text), lower(?)) > 0")
		args = append(args, filter.Query)
	}
	if filter.DirectOnly {
		conds = append(conds, "q.direct = 1")
	}

	query := `
		SELECT q.document_id, q.figure, q.text, q.context, q.direct, q.confidence, q.position,
			COALESCE(CAST(json_extract(d.metadata, '$.year') AS INTEGER), 0),
			COALESCE(json_extract(d.metadata, '$.country_code'), '')
		FROM quotations q
		JOIN documents d ON d.id = q.document_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + yearOrder + ", q.position"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quotations: %w", err)
	}
	defer rows.Close()

	quotes := []domain.Quotation{}
	for rows.Next() {
		var q domain.Quotation
		err := rows.Scan(&q.DocumentID, &q.Figure, &q.Text, &q.Context, &q.Direct, &q.Confidence, &q.Offset,
			&q.Year, &q.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("scanning quotation: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotations: %w", err)
	}
	return quotes, nil
}
