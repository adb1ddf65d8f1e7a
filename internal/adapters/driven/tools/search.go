package tools

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

const defaultSearchLimit = 10

// SearchSpeeches runs a keyword search over speech segments.
type SearchSpeeches struct {
	search driving.SearchService
}

// NewSearchSpeeches creates the search_speeches tool.
func NewSearchSpeeches(search driving.SearchService) *SearchSpeeches {
	return &SearchSpeeches{search: search}
}

func (t *SearchSpeeches) Name() string { return "search_speeches" }

func (t *SearchSpeeches) Description() string {
	return "Full-text search over General Debate speech segments, best matches first. " +
		"Optionally filter by ISO3 country codes and a year range."
}

func (t *SearchSpeeches) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Keywords to search for"},
			"country_codes": {"type": "array", "items": {"type": "string"}, "description": "ISO3 codes such as USA or FRA"},
			"year_from": {"type": "integer", "minimum": 1946},
			"year_to": {"type": "integer", "minimum": 1946},
			"limit": {"type": "integer", "minimum": 1, "maximum": 50, "description": "Maximum results (default 10)"}
		},
		"required": ["query"]
	}`)
}

type searchHit struct {
	SegmentID   string  `json:"segment_id"`
	DocumentID  string  `json:"document_id"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country,omitempty"`
	Year        int     `json:"year"`
	Score       float64 `json:"score"`
	Excerpt     string  `json:"excerpt"`
}

func (t *SearchSpeeches) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Query        string   `json:"query"`
		CountryCodes []string `json:"country_codes"`
		YearFrom     int      `json:"year_from"`
		YearTo       int      `json:"year_to"`
		Limit        int      `json:"limit"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}
	if params.Limit <= 0 {
		params.Limit = defaultSearchLimit
	}

	results, err := t.search.Search(ctx, params.Query, domain.SearchOptions{
		Limit:        params.Limit,
		CountryCodes: params.CountryCodes,
		YearFrom:     params.YearFrom,
		YearTo:       params.YearTo,
	})
	if err != nil {
		return "", err
	}

	hits := make([]searchHit, len(results))
	for i, r := range results {
		excerpt := r.Highlight
		if excerpt == "" {
			excerpt = r.Segment.Content
		}
		hits[i] = searchHit{
			SegmentID:   r.Segment.ID,
			DocumentID:  r.Document.ID,
			CountryCode: r.Document.MetaString(domain.MetaCountryCode),
			Country:     r.Document.MetaString(domain.MetaCountryName),
			Year:        r.Document.Year(),
			Score:       r.Score,
			Excerpt:     excerpt,
		}
	}
	return encodeResult(hits)
}
