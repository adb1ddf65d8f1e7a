package mcp

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	gotOpts domain.SearchOptions
	err     error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.gotOpts = opts
	return m.results, m.err
}

// mockSimilarityService is a mock implementation of driving.SimilarityService.
type mockSimilarityService struct {
	scored    []domain.ScoredSegment
	matrix    *domain.SimilarityMatrix
	gotFilter domain.DocumentFilter
	gotK      int
	called    string
	err       error
}

func (m *mockSimilarityService) SimilarSegments(
	_ context.Context, id string, k int, _ float64,
) ([]domain.ScoredSegment, error) {
	m.called, m.gotK = "segment:"+id, k
	return m.scored, m.err
}

func (m *mockSimilarityService) SimilarToText(
	_ context.Context, text string, k int, _ float64,
) ([]domain.ScoredSegment, error) {
	m.called, m.gotK = "text:"+text, k
	return m.scored, m.err
}

func (m *mockSimilarityService) Pairs(
	context.Context, domain.DocumentFilter, float64,
) ([]domain.SimilarityPair, error) {
	return nil, m.err
}

func (m *mockSimilarityService) Matrix(
	_ context.Context, filter domain.DocumentFilter, _ float64,
) (*domain.SimilarityMatrix, error) {
	m.gotFilter = filter
	return m.matrix, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(context.Context, domain.DocumentFilter) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(context.Context, string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetDetails(context.Context, string) (*driving.DocumentDetails, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(context.Context, string) error { return m.err }

func (m *mockDocumentService) Open(context.Context, string) error { return m.err }

// mockAgent is a mock implementation of driving.AgentService.
type mockAgent struct {
	outcome  *domain.AgentOutcome
	question string
	err      error
}

func (m *mockAgent) Ask(_ context.Context, q string) (*domain.AgentOutcome, error) {
	m.question = q
	return m.outcome, m.err
}

func (m *mockAgent) Reset() {}
