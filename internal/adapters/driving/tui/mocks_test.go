package tui

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

type MockSearchService struct {
	results []domain.SearchResult
	err     error
	queries []string
}

func (m *MockSearchService) Search(_ context.Context, query string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	m.queries = append(m.queries, query)
	return m.results, m.err
}

type MockDocumentService struct {
	docs []domain.Document
}

func (m *MockDocumentService) List(context.Context, domain.DocumentFilter) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *MockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) GetDetails(ctx context.Context, id string) (*driving.DocumentDetails, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentDetails{ID: doc.ID, Title: doc.Title, SegmentCount: 3, EmbeddedCount: 3}, nil
}

func (m *MockDocumentService) Delete(context.Context, string) error { return nil }

func (m *MockDocumentService) Open(context.Context, string) error { return nil }

type MockSimilarityService struct {
	driving.SimilarityService
	results []domain.ScoredSegment
}

func (m *MockSimilarityService) SimilarSegments(context.Context, string, int, float64) ([]domain.ScoredSegment, error) {
	return m.results, nil
}

func testPorts() *Ports {
	fra := domain.Document{
		ID: "doc-fra", Title: "France", Content: "We must act on climate.",
		Metadata: map[string]any{domain.MetaCountryCode: "FRA", domain.MetaYear: 2023},
	}
	return &Ports{
		Search: &MockSearchService{results: []domain.SearchResult{{
			Document: fra,
			Segment:  domain.Segment{ID: "seg-1", DocumentID: "doc-fra", Content: fra.Content},
			Score:    1.2,
		}}},
		Documents:  &MockDocumentService{docs: []domain.Document{fra}},
		Similarity: &MockSimilarityService{results: []domain.ScoredSegment{{SegmentID: "seg-2", Score: 0.9}}},
	}
}
