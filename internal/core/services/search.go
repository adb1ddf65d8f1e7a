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

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search limits.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 200
)

// SearchService provides keyword search over speech segments.
type SearchService struct {
	engine driven.SearchEngine
}

// NewSearchService creates a new search service. A nil engine makes
// every search fail with ErrSearchUnavailable.
func NewSearchService(engine driven.SearchEngine) *SearchService {
	return &SearchService{engine: engine}
}

// Search runs a full-text query. An empty query returns no results.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if s.engine == nil {
		return nil, domain.ErrSearchUnavailable
	}
	if opts.YearFrom > 0 && opts.YearTo > 0 && opts.YearFrom > opts.YearTo {
		return nil, fmt.Errorf("%w: year range %d-%d", domain.ErrInvalidInput, opts.YearFrom, opts.YearTo)
	}

	switch {
	case opts.Limit <= 0:
		opts.Limit = DefaultSearchLimit
	case opts.Limit > MaxSearchLimit:
		opts.Limit = MaxSearchLimit
	}
	for i, c := range opts.CountryCodes {
		opts.CountryCodes[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	logger.Debug("Limit: %d, countries: %v, years: %d-%d",
		opts.Limit, opts.CountryCodes, opts.YearFrom, opts.YearTo)

	results, err := s.engine.Search(ctx, query, opts)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	for i := range results {
		if results[i].Highlight == "" {
			results[i].Highlight = highlight(results[i].Segment.Content, query)
		}
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// highlight returns the first sentence mentioning a query term.
func highlight(content, query string) string {
	queryTerms := strings.Fields(strings.ToLower(query))
	if len(queryTerms) == 0 {
		return ""
	}

	for _, sentence := range splitSentences(content) {
		sentenceLower := strings.ToLower(sentence)
		for _, term := range queryTerms {
			if strings.Contains(sentenceLower, strings.Trim(term, `"*`)) {
				if r := []rune(sentence); len(r) > 200 {
					return string(r[:200]) + "..."
				}
				return sentence
			}
		}
	}
	return ""
}

// splitSentences splits content into sentences.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
