package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Ensure QuotationService implements the interface.
var _ driving.QuotationService = (*QuotationService)(nil)

// QuotationService extracts quotations from stored speeches and finds
// the passages quoted across many of them.
type QuotationService struct {
	docs     driven.DocumentStore
	store    driven.QuotationStore
	analyzer driven.QuotationAnalyzer
}

// NewQuotationService creates a quotation service.
func NewQuotationService(
	docs driven.DocumentStore,
	store driven.QuotationStore,
	analyzer driven.QuotationAnalyzer,
) *QuotationService {
	return &QuotationService{docs: docs, store: store, analyzer: analyzer}
}

// Extract rescans documents and replaces their stored quotations. Unknown
// IDs are ErrNotFound. It returns the number of quotations stored.
func (s *QuotationService) Extract(ctx context.Context, ids []string) (int, error) {
	logger.Section("Quotation Extraction")

	docs, err := s.documents(ctx, ids)
	if err != nil {
		return 0, err
	}

	total, direct := 0, 0
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		quotes := s.analyzer.Extract(&docs[i])
		if err := s.store.SaveQuotations(ctx, docs[i].ID, quotes); err != nil {
			return total, fmt.Errorf("save quotations of %s: %w", docs[i].ID, err)
		}
		total += len(quotes)
		for _, q := range quotes {
			if q.Direct {
				direct++
			}
		}
		logger.Debug("Extracted %d quotation(s) from %s", len(quotes), docs[i].ID)
	}

	logger.Info("Extracted %d quotation(s), %d direct, from %d document(s)", total, direct, len(docs))
	return total, nil
}

// Search returns stored quotations matching the filter.
func (s *QuotationService) Search(ctx context.Context, filter domain.QuotationFilter) ([]domain.Quotation, error) {
	filter.Figure = strings.TrimSpace(filter.Figure)
	filter.Query = strings.TrimSpace(filter.Query)
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	return s.store.ListQuotations(ctx, filter)
}

// MostQuoted groups all stored quotations and returns up to limit groups,
// most repeated first. A limit of zero returns every group.
func (s *QuotationService) MostQuoted(ctx context.Context, limit int) ([]domain.QuotationGroup, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}

	quotes, err := s.store.ListQuotations(ctx, domain.QuotationFilter{})
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}

	groups := s.analyzer.Group(quotes)
	if groups == nil {
		groups = []domain.QuotationGroup{}
	}
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}

func (s *QuotationService) documents(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		docs, err := s.docs.ListDocuments(ctx, domain.DocumentFilter{})
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		return docs, nil
	}

	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.docs.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}
