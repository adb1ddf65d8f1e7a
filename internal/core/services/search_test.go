package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// mockSearchEngine implements driven.SearchEngine for testing.
type mockSearchEngine struct {
	results   []domain.SearchResult
	searchErr error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchEngine) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func TestSearchService_EmptyQuery(t *testing.T) {
	engine := &mockSearchEngine{}
	svc := NewSearchService(engine)

	results, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, engine.lastQuery, "engine not called")
}

func TestSearchService_NoEngine(t *testing.T) {
	svc := NewSearchService(nil)

	_, err := svc.Search(context.Background(), "peace", domain.SearchOptions{})

	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestSearchService_NormalisesOptions(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default", 0, DefaultSearchLimit},
		{"negative", -5, DefaultSearchLimit},
		{"kept", 7, 7},
		{"capped", 10000, MaxSearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockSearchEngine{}
			svc := NewSearchService(engine)

			_, err := svc.Search(context.Background(), " peace ", domain.SearchOptions{
				Limit:        tt.limit,
				CountryCodes: []string{"fra", " usa"},
			})

			require.NoError(t, err)
			assert.Equal(t, "peace", engine.lastQuery)
			assert.Equal(t, tt.wantLimit, engine.lastOpts.Limit)
			assert.Equal(t, []string{"FRA", "USA"}, engine.lastOpts.CountryCodes)
		})
	}
}

func TestSearchService_InvalidYearRange(t *testing.T) {
	svc := NewSearchService(&mockSearchEngine{})

	_, err := svc.Search(context.Background(), "peace", domain.SearchOptions{YearFrom: 2000, YearTo: 1990})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchService_EngineError(t *testing.T) {
	svc := NewSearchService(&mockSearchEngine{searchErr: errors.New("fts5: syntax error")})

	_, err := svc.Search(context.Background(), "peace", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search: fts5: syntax error")
}

func TestSearchService_FillsMissingHighlights(t *testing.T) {
	engine := &mockSearchEngine{results: []domain.SearchResult{
		{Segment: domain.Segment{Content: "We meet again. Peace is our aim. Thank you."}, Score: 2},
		{Segment: domain.Segment{Content: "Peace."}, Highlight: "[Peace]", Score: 1},
	}}
	svc := NewSearchService(engine)

	results, err := svc.Search(context.Background(), "peace", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Peace is our aim.", results[0].Highlight)
	assert.Equal(t, "[Peace]", results[1].Highlight, "engine snippet kept")
}

func TestHighlight(t *testing.T) {
	assert.Empty(t, highlight("Nothing relevant here.", "peace"))
	assert.Empty(t, highlight("Peace.", ""))

	long := "Peace " + strings.Repeat("é", 300) + "."
	got := highlight(long, "peace")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 203, len([]rune(got)))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two!\nThree? four")
	assert.Equal(t, []string{"One.", "Two!", "Three?", "four"}, got)
}
