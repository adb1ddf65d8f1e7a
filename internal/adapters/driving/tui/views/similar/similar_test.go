package similar

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

type MockSimilarityService struct {
	driving.SimilarityService
	results   []domain.ScoredSegment
	err       error
	lastK     int
	lastScore float64
}

func (m *MockSimilarityService) SimilarSegments(_ context.Context, _ string, k int, threshold float64) ([]domain.ScoredSegment, error) {
	m.lastK, m.lastScore = k, threshold
	return m.results, m.err
}

type MockSegmentStore struct {
	driven.SegmentStore
	segments map[string]*domain.Segment
}

func (m *MockSegmentStore) GetSegment(_ context.Context, id string) (*domain.Segment, error) {
	if s, ok := m.segments[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func newMocks() (*MockSimilarityService, *MockSegmentStore) {
	sim := &MockSimilarityService{results: []domain.ScoredSegment{
		{SegmentID: "seg-deu-0001", Score: 0.93},
		{SegmentID: "seg-gone", Score: 0.71},
	}}
	segs := &MockSegmentStore{segments: map[string]*domain.Segment{
		"seg-deu-0001": {ID: "seg-deu-0001", DocumentID: "doc-deu", Content: "Climate  change knows\nno borders."},
	}}
	return sim, segs
}

func opened(t *testing.T, v *View) *View {
	t.Helper()
	v.SetDimensions(100, 30)
	cmd := v.Open(messages.SimilarRequested{SegmentID: "seg-fra", Excerpt: "The climate emergency."})
	require.NotNil(t, cmd)
	assert.Contains(t, v.View(), "Finding similar passages...")
	v, _ = v.Update(cmd())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.Nil(t, v.Init())
	assert.Equal(t, DefaultK, v.K)
	assert.InDelta(t, DefaultThreshold, v.Threshold, 1e-9)
	assert.Nil(t, v.Selected())
}

func TestView_OpenResolvesText(t *testing.T) {
	sim, segs := newMocks()
	v := opened(t, NewView(nil, sim, segs))

	assert.Equal(t, "seg-fra", v.SegmentID())
	assert.Equal(t, DefaultK, sim.lastK)
	assert.InDelta(t, DefaultThreshold, sim.lastScore, 1e-9)

	view := v.View()
	assert.Contains(t, view, "The climate emergency.")
	assert.Contains(t, view, "0.9300")
	assert.Contains(t, view, "Climate change knows no borders.")
	assert.Contains(t, view, "(text unavailable)")

	p := v.Selected()
	require.NotNil(t, p)
	assert.Equal(t, "doc-deu", p.DocumentID)
}

func TestView_WithoutSegmentStore(t *testing.T) {
	sim, _ := newMocks()
	v := opened(t, NewView(nil, sim, nil))

	assert.Contains(t, v.View(), "seg-deu-")
	assert.Empty(t, v.Selected().Content)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "no document to open without the text lookup")
}

func TestView_NoService(t *testing.T) {
	v := opened(t, NewView(nil, nil, nil))

	assert.Contains(t, v.View(), ErrUnavailable.Error())
}

func TestView_ServiceError(t *testing.T) {
	sim := &MockSimilarityService{err: errors.New("segment has no vector")}
	v := opened(t, NewView(nil, sim, nil))

	assert.Contains(t, v.View(), "Error: segment has no vector")
}

func TestView_NoResults(t *testing.T) {
	v := opened(t, NewView(nil, &MockSimilarityService{}, nil))

	assert.Contains(t, v.View(), "Nothing scores above 0.50.")
}

func TestView_IgnoresStaleResults(t *testing.T) {
	sim, segs := newMocks()
	v := opened(t, NewView(nil, sim, segs))

	v, _ = v.Update(messages.SimilarLoaded{SegmentID: "seg-old"})

	assert.Len(t, v.passages, 2)
}

func TestView_Keys(t *testing.T) {
	sim, segs := newMocks()
	v := opened(t, NewView(nil, sim, segs))

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.SpeechSelected{DocumentID: "doc-deu", View: messages.ViewReader}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	require.NotNil(t, cmd)
	req, ok := cmd().(messages.SimilarRequested)
	require.True(t, ok)
	assert.Equal(t, "seg-deu-0001", req.SegmentID)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "seg-gone", v.Selected().SegmentID)
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "seg-deu-0001", v.Selected().SegmentID)

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Back{}, cmd())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "seg", shortID("seg"))
	assert.Equal(t, "12345678", shortID("1234567890"))
}
