package tools

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

const (
	// DefaultQuotationLimit caps results when the model omits a limit.
	DefaultQuotationLimit = 20

	maxQuotationLimit = 100
)

// FindQuotations searches quotations extracted from speeches, or reports
// the passages quoted most often.
type FindQuotations struct {
	quotations driving.QuotationService
}

// NewFindQuotations creates the find_quotations tool.
func NewFindQuotations(quotations driving.QuotationService) *FindQuotations {
	return &FindQuotations{quotations: quotations}
}

func (t *FindQuotations) Name() string { return "find_quotations" }

func (t *FindQuotations) Description() string {
	return "Find passages that speakers quoted, for example from Gandhi or the UN Charter. " +
		"Filter by the quoted figure or by words in the quotation, or set most_quoted to get " +
		"the passages repeated across the most speeches."
}

func (t *FindQuotations) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"figure": {"type": "string", "description": "Person or document quoted, for example Nelson Mandela"},
			"query": {"type": "string", "description": "Words the quotation contains"},
			"direct_only": {"type": "boolean", "description": "Only quotations with an explicit attribution"},
			"most_quoted": {"type": "boolean", "description": "Return groups of repeated quotations instead"},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100}
		}
	}`)
}

func (t *FindQuotations) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Figure     string `json:"figure"`
		Query      string `json:"query"`
		DirectOnly bool   `json:"direct_only"`
		MostQuoted bool   `json:"most_quoted"`
		Limit      int    `json:"limit"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultQuotationLimit
	}
	limit = min(limit, maxQuotationLimit)

	if params.MostQuoted {
		groups, err := t.quotations.MostQuoted(ctx, limit)
		if err != nil {
			return "", err
		}
		return encodeResult(groups)
	}

	quotes, err := t.quotations.Search(ctx, domain.QuotationFilter{
		Figure:     params.Figure,
		Query:      params.Query,
		DirectOnly: params.DirectOnly,
		Limit:      limit,
	})
	if err != nil {
		return "", err
	}
	return encodeResult(quotes)
}
