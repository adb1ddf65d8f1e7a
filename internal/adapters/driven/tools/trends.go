package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// ConceptTrends reports how often a concept is discussed per country and
// decade.
type ConceptTrends struct {
	concepts driving.ConceptService
}

// NewConceptTrends creates the concept_trends tool.
func NewConceptTrends(concepts driving.ConceptService) *ConceptTrends {
	return &ConceptTrends{concepts: concepts}
}

func (t *ConceptTrends) Name() string { return "concept_trends" }

func (t *ConceptTrends) Description() string {
	return "Count segments tagged with a concept (for example sovereignty or climate) " +
		"per country and decade. Set by_region for the yearly share of each region's speeches " +
		"that discuss it. Call with an empty concept to list the known concepts."
}

func (t *ConceptTrends) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"concept": {"type": "string", "description": "Concept name"},
			"country_codes": {"type": "array", "items": {"type": "string"}, "description": "ISO3 codes to restrict to"},
			"by_region": {"type": "boolean", "description": "Aggregate per region and year instead"}
		}
	}`)
}

func (t *ConceptTrends) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Concept      string   `json:"concept"`
		CountryCodes []string `json:"country_codes"`
		ByRegion     bool     `json:"by_region"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}

	if strings.TrimSpace(params.Concept) == "" {
		concepts, err := t.concepts.Concepts(ctx)
		if err != nil {
			return "", err
		}
		names := make([]string, len(concepts))
		for i, c := range concepts {
			names[i] = c.Name
		}
		return encodeResult(map[string]any{"concepts": names})
	}

	if params.ByRegion {
		regional, err := t.concepts.RegionalTrends(ctx, params.Concept)
		if err != nil {
			return "", err
		}
		return encodeResult(regional)
	}

	trends, err := t.concepts.Trends(ctx, params.Concept, params.CountryCodes)
	if err != nil {
		return "", err
	}
	return encodeResult(trends)
}
