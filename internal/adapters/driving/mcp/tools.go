package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

const (
	defaultSearchLimit = 10
	defaultSimilarK    = 10
)

// SimilarSegmentsInput is the input schema for the similar_segments tool.
type SimilarSegmentsInput struct {
	SegmentID string  `json:"segment_id,omitempty" jsonschema:"ID of a stored segment to compare against"`
	Text      string  `json:"text,omitempty" jsonschema:"free text to compare against, used when segment_id is empty"`
	K         int     `json:"k,omitempty" jsonschema:"number of results (default 10)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity in [-1, 1]"`
}

// SimilarSegmentsOutput is the output schema for the similar_segments tool.
type SimilarSegmentsOutput struct {
	Results []domain.ScoredSegment `json:"results"`
	Count   int                    `json:"count"`
}

// FilterInput selects the speeches a similarity query covers.
type FilterInput struct {
	DocumentIDs  []string `json:"document_ids,omitempty" jsonschema:"restrict to these speeches"`
	CountryCodes []string `json:"country_codes,omitempty" jsonschema:"ISO3 country codes"`
	YearFrom     int      `json:"year_from,omitempty" jsonschema:"first year, inclusive"`
	YearTo       int      `json:"year_to,omitempty" jsonschema:"last year, inclusive"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of segments considered"`
	Threshold    float64  `json:"threshold,omitempty" jsonschema:"cells below this score are zero"`
}

func (f FilterInput) filter() domain.DocumentFilter {
	codes := make([]string, 0, len(f.CountryCodes))
	for _, c := range f.CountryCodes {
		codes = append(codes, strings.ToUpper(strings.TrimSpace(c)))
	}
	return domain.DocumentFilter{
		DocumentIDs:  f.DocumentIDs,
		CountryCodes: codes,
		YearFrom:     f.YearFrom,
		YearTo:       f.YearTo,
		Limit:        f.Limit,
	}
}

// MatrixOutput is the output schema for the similarity_matrix tool.
type MatrixOutput struct {
	SegmentIDs []string    `json:"segment_ids"`
	Threshold  float64     `json:"threshold"`
	Cells      [][]float64 `json:"cells"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query        string   `json:"query" jsonschema:"keywords to search for"`
	CountryCodes []string `json:"country_codes,omitempty" jsonschema:"ISO3 country codes"`
	YearFrom     int      `json:"year_from,omitempty" jsonschema:"first year, inclusive"`
	YearTo       int      `json:"year_to,omitempty" jsonschema:"last year, inclusive"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID  string  `json:"document_id"`
	SegmentID   string  `json:"segment_id"`
	Title       string  `json:"title"`
	CountryCode string  `json:"country_code,omitempty"`
	Year        int     `json:"year,omitempty"`
	Score       float64 `json:"score"`
	Highlight   string  `json:"highlight,omitempty"`
	Content     string  `json:"content,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"research question about the speeches"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answered  bool   `json:"answered"`
	Answer    string `json:"answer"`
	State     string `json:"state"`
	Steps     int    `json:"steps"`
	ToolCalls int    `json:"tool_calls"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similar_segments",
		Description: "Find the speech segments most similar to a segment or to free text",
	}, s.handleSimilarSegments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similarity_matrix",
		Description: "Pairwise cosine similarity matrix of the segments of the selected speeches",
	}, s.handleMatrix)

	if s.ports.Search != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search",
			Description: "Full-text search across speech segments",
		}, s.handleSearch)
	}

	if s.ports.Agents != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask the research agent a question; it searches the corpus with its tools before answering",
		}, s.handleAsk)
	}
}

func (s *Server) handleSimilarSegments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimilarSegmentsInput,
) (*mcp.CallToolResult, SimilarSegmentsOutput, error) {
	k := input.K
	if k <= 0 {
		k = defaultSimilarK
	}

	var (
		results []domain.ScoredSegment
		err     error
	)
	switch {
	case input.SegmentID != "":
		results, err = s.ports.Similarity.SimilarSegments(ctx, input.SegmentID, k, input.Threshold)
	case strings.TrimSpace(input.Text) != "":
		results, err = s.ports.Similarity.SimilarToText(ctx, input.Text, k, input.Threshold)
	default:
		err = fmt.Errorf("%w: segment_id or text is required", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, SimilarSegmentsOutput{}, err
	}
	if results == nil {
		results = []domain.ScoredSegment{}
	}
	return nil, SimilarSegmentsOutput{Results: results, Count: len(results)}, nil
}

func (s *Server) handleMatrix(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FilterInput,
) (*mcp.CallToolResult, MatrixOutput, error) {
	m, err := s.ports.Similarity.Matrix(ctx, input.filter(), input.Threshold)
	if err != nil {
		return nil, MatrixOutput{}, err
	}
	return nil, MatrixOutput{SegmentIDs: m.SegmentIDs, Threshold: m.Threshold, Cells: m.Cells}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results, err := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{
		Limit:        limit,
		CountryCodes: input.CountryCodes,
		YearFrom:     input.YearFrom,
		YearTo:       input.YearTo,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		doc := &results[i].Document
		output.Results[i] = SearchResultOutput{
			DocumentID:  doc.ID,
			SegmentID:   results[i].Segment.ID,
			Title:       doc.Title,
			CountryCode: doc.MetaString(domain.MetaCountryCode),
			Year:        doc.Year(),
			Score:       results[i].Score,
			Highlight:   results[i].Highlight,
			Content:     results[i].Segment.Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	agent, err := s.ports.Agents()
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("start agent: %w", err)
	}

	outcome, err := agent.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answered:  outcome.Answered(),
		Answer:    outcome.Answer,
		State:     outcome.State.String(),
		Steps:     outcome.Steps,
		ToolCalls: outcome.ToolCalls,
	}
	if !out.Answered {
		out.Answer = domain.StoppedWithoutAnswer
	}
	return nil, out, nil
}
