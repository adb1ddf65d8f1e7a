// Package tools provides the capabilities the research agent can call.
//
// Every tool implements driven.Tool. Arguments reach Execute already
// validated against Parameters by the dispatcher, so tools only decode
// them. Results are JSON the model reads back.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// Deps holds what the tools run against. Nil services leave the
// corresponding tools out of All.
type Deps struct {
	Query      driven.QueryRunner
	Search     driving.SearchService
	Similarity driving.SimilarityService
	Segments   driven.SegmentStore
	Concepts   driving.ConceptService
	Quotations driving.QuotationService
	Notes      driven.NoteStore
	WebSearch  *WebSearch
	FetchURL   *FetchURL
}

// All returns every tool whose dependencies are present.
func All(d Deps) []driven.Tool {
	var out []driven.Tool
	if d.Search != nil {
		out = append(out, NewSearchSpeeches(d.Search))
	}
	if d.Similarity != nil {
		out = append(out, NewSimilarSegments(d.Similarity, d.Segments))
	}
	if d.Query != nil {
		out = append(out, NewSQLQuery(d.Query, 0))
	}
	if d.Concepts != nil {
		out = append(out, NewConceptTrends(d.Concepts), NewWorldEvents(d.Concepts))
	}
	if d.Quotations != nil {
		out = append(out, NewFindQuotations(d.Quotations))
	}
	if d.WebSearch != nil {
		out = append(out, d.WebSearch)
	}
	if d.FetchURL != nil {
		out = append(out, d.FetchURL)
	}
	if d.Notes != nil {
		out = append(out, NewSaveNote(d.Notes), NewListNotes(d.Notes))
	}
	return out
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

func encodeResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}
