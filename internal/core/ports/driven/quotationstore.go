package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// QuotationStore persists quotations found in speeches.
type QuotationStore interface {
	// SaveQuotations replaces the quotations of one document.
	SaveQuotations(ctx context.Context, documentID string, quotes []domain.Quotation) error

	// ListQuotations returns matching quotations ordered by year, then
	// document, then position in the text.
	ListQuotations(ctx context.Context, filter domain.QuotationFilter) ([]domain.Quotation, error)
}

// QuotationAnalyzer finds quotations in speech text and groups repeated
// ones.
type QuotationAnalyzer interface {
	// Extract returns the quotations of one document.
	Extract(doc *domain.Document) []domain.Quotation

	// Group clusters near-identical quotations and returns groups quoted
	// at least twice, most quoted first.
	Group(quotes []domain.Quotation) []domain.QuotationGroup
}
