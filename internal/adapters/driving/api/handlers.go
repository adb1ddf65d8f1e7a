package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/logger"
)

const (
	defaultSimilarK    = 10
	defaultSearchLimit = 20
)

// filterQuery is the query string shared by the similarity endpoints.
// List parameters accept repeated keys or comma-separated values.
type filterQuery struct {
	DocumentIDs []string `form:"document"`
	Countries   []string `form:"country"`
	YearFrom    int      `form:"year_from"`
	YearTo      int      `form:"year_to"`
	Limit       int      `form:"limit"`
	Threshold   float64  `form:"threshold"`
}

func (q filterQuery) filter() domain.DocumentFilter {
	codes := splitList(q.Countries)
	for i, c := range codes {
		codes[i] = strings.ToUpper(c)
	}
	return domain.DocumentFilter{
		DocumentIDs:  splitList(q.DocumentIDs),
		CountryCodes: codes,
		YearFrom:     q.YearFrom,
		YearTo:       q.YearTo,
		Limit:        q.Limit,
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handlePairs(c *gin.Context) {
	var q filterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	pairs, err := s.ports.Similarity.Pairs(c.Request.Context(), q.filter(), q.Threshold)
	if err != nil {
		writeError(c, err)
		return
	}
	if pairs == nil {
		pairs = []domain.SimilarityPair{}
	}
	c.JSON(http.StatusOK, gin.H{"pairs": pairs, "count": len(pairs), "threshold": q.Threshold})
}

func (s *Server) handleMatrix(c *gin.Context) {
	var q filterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	m, err := s.ports.Similarity.Matrix(c.Request.Context(), q.filter(), q.Threshold)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleSimilarSegments(c *gin.Context) {
	var q struct {
		K         int     `form:"k"`
		Threshold float64 `form:"threshold"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if q.K <= 0 {
		q.K = defaultSimilarK
	}

	hits, err := s.ports.Similarity.SimilarSegments(c.Request.Context(), c.Param("id"), q.K, q.Threshold)
	if err != nil {
		writeError(c, err)
		return
	}
	if hits == nil {
		hits = []domain.ScoredSegment{}
	}
	c.JSON(http.StatusOK, gin.H{"segment_id": c.Param("id"), "results": hits, "count": len(hits)})
}

type searchHit struct {
	DocumentID  string  `json:"document_id"`
	SegmentID   string  `json:"segment_id"`
	Title       string  `json:"title"`
	CountryCode string  `json:"country_code,omitempty"`
	Year        int     `json:"year,omitempty"`
	Score       float64 `json:"score"`
	Highlight   string  `json:"highlight,omitempty"`
}

func (s *Server) handleSearch(c *gin.Context) {
	if s.ports.Search == nil {
		writeError(c, domain.ErrSearchUnavailable)
		return
	}

	var q struct {
		Query     string   `form:"q"`
		Countries []string `form:"country"`
		YearFrom  int      `form:"year_from"`
		YearTo    int      `form:"year_to"`
		Limit     int      `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if strings.TrimSpace(q.Query) == "" {
		badRequest(c, errors.New("q is required"))
		return
	}
	if q.Limit <= 0 {
		q.Limit = defaultSearchLimit
	}

	results, err := s.ports.Search.Search(c.Request.Context(), q.Query, domain.SearchOptions{
		Limit:        q.Limit,
		CountryCodes: splitList(q.Countries),
		YearFrom:     q.YearFrom,
		YearTo:       q.YearTo,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	hits := make([]searchHit, len(results))
	for i := range results {
		doc := &results[i].Document
		hits[i] = searchHit{
			DocumentID:  doc.ID,
			SegmentID:   results[i].Segment.ID,
			Title:       doc.Title,
			CountryCode: doc.MetaString(domain.MetaCountryCode),
			Year:        doc.Year(),
			Score:       results[i].Score,
			Highlight:   results[i].Highlight,
		}
	}
	c.JSON(http.StatusOK, gin.H{"query": q.Query, "results": hits, "count": len(hits)})
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

type askResponse struct {
	Answered  bool   `json:"answered"`
	Answer    string `json:"answer"`
	State     string `json:"state"`
	Steps     int    `json:"steps"`
	ToolCalls int    `json:"tool_calls"`
}

func (s *Server) handleAsk(c *gin.Context) {
	if s.ports.Agents == nil {
		writeError(c, domain.ErrLLMUnavailable)
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	agent, err := s.ports.Agents()
	if err != nil {
		writeError(c, err)
		return
	}

	outcome, err := agent.Ask(c.Request.Context(), req.Question)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := askResponse{
		Answered:  outcome.Answered(),
		Answer:    outcome.Answer,
		State:     outcome.State.String(),
		Steps:     outcome.Steps,
		ToolCalls: outcome.ToolCalls,
	}
	if !resp.Answered {
		resp.Answer = domain.StoppedWithoutAnswer
	}
	c.JSON(http.StatusOK, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrDimensionMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrProvider):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrSearchUnavailable),
		errors.Is(err, domain.ErrVectorIndexUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
