package driving

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// QuotationService extracts quotations from speeches and reports which
// passages are quoted most.
type QuotationService interface {
	// Extract rescans the given documents, or all when ids is empty, and
	// returns the number of quotations stored.
	Extract(ctx context.Context, ids []string) (int, error)

	// Search returns stored quotations matching the filter.
	Search(ctx context.Context, filter domain.QuotationFilter) ([]domain.Quotation, error)

	// MostQuoted returns up to limit groups of repeated quotations.
	MostQuoted(ctx context.Context, limit int) ([]domain.QuotationGroup, error)
}
