package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func speech(code string, year int, title string) domain.Document {
	return domain.Document{
		Title:    title,
		Metadata: map[string]any{domain.MetaCountryCode: code, domain.MetaYear: year},
	}
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{Document: speech("FRA", 2023, "France"), Highlight: "the [climate] emergency", Score: 0.95},
		{Document: speech("KEN", 2019, "Kenya"), Segment: domain.Segment{Content: "Debt relief now."}, Score: 0.85},
		{Document: speech("BRA", 1992, "Brazil"), Score: 0.75},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.SelectedResult())
	assert.Nil(t, list.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	assert.NotNil(t, list.styles)
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	list.SetResults(sampleResults()[:2])

	assert.Equal(t, 2, list.Count())
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SetSelected_OutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.SetSelected(5)
	assert.Equal(t, 0, list.Selected())
	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, list.Selected())
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, list.Selected())
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, list.Selected(), "stays on last")
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, list.Selected())
	list.MoveUp()
	list.MoveUp()
	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, "France", list.SelectedResult().Document.Title)
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	assert.Contains(t, list.View(), "No results")

	list.SetResults(sampleResults())
	list.SetDimensions(100, 40)
	view := list.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "FRA 2023")
	assert.Contains(t, view, "climate")
	assert.Contains(t, view, "Debt relief now.")
	assert.Contains(t, view, "0.95")
}

func TestResultList_ViewScrollsToSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetDimensions(100, 6)
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "BRA 1992")
	assert.NotContains(t, view, "FRA 2023")
}

func TestSpeechLabel(t *testing.T) {
	doc := speech("FRA", 2023, "France")
	assert.Equal(t, "FRA 2023  France", SpeechLabel(&doc))

	bare := domain.Document{}
	assert.Equal(t, "(untitled)", SpeechLabel(&bare))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "é...", Truncate("éééééé", 2))
}

func TestRenderHighlight(t *testing.T) {
	s := styles.DefaultStyles()

	out := RenderHighlight(s, "we face [climate] and [debt] crises")

	assert.NotContains(t, out, "[")
	for _, word := range []string{"we face", "climate", "debt", "crises"} {
		assert.Contains(t, out, word)
	}
	assert.True(t, strings.Contains(RenderHighlight(s, "unclosed [term"), "[term"))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name                 string
		selected, n, visible int
		start, end           int
	}{
		{"fits", 0, 3, 10, 0, 3},
		{"top", 0, 20, 5, 0, 5},
		{"scrolled", 7, 20, 5, 3, 8},
		{"zero visible", 4, 20, 0, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.selected, tt.n, tt.visible)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
