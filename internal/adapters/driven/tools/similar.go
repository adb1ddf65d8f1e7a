package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

const defaultSimilarK = 5

// SimilarSegments finds segments close in meaning to a segment or a text.
type SimilarSegments struct {
	similarity driving.SimilarityService
	segments   driven.SegmentStore
}

// NewSimilarSegments creates the similar_segments tool. segments is
// optional; with it, hits carry the segment text.
func NewSimilarSegments(similarity driving.SimilarityService, segments driven.SegmentStore) *SimilarSegments {
	return &SimilarSegments{similarity: similarity, segments: segments}
}

func (t *SimilarSegments) Name() string { return "similar_segments" }

func (t *SimilarSegments) Description() string {
	return "Find the speech segments most similar in meaning to a stored segment (segment_id) " +
		"or to free text (text). Scores are cosine similarity, 1 is identical."
}

func (t *SimilarSegments) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"segment_id": {"type": "string", "description": "ID of a stored segment"},
			"text": {"type": "string", "description": "Free text to compare against"},
			"k": {"type": "integer", "minimum": 1, "maximum": 50, "description": "Number of results (default 5)"},
			"threshold": {"type": "number", "minimum": -1, "maximum": 1, "description": "Minimum score (default 0)"}
		}
	}`)
}

type similarHit struct {
	SegmentID  string  `json:"segment_id"`
	DocumentID string  `json:"document_id,omitempty"`
	Score      float64 `json:"score"`
	Content    string  `json:"content,omitempty"`
}

func (t *SimilarSegments) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		SegmentID string  `json:"segment_id"`
		Text      string  `json:"text"`
		K         int     `json:"k"`
		Threshold float64 `json:"threshold"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return "", err
	}
	if params.K <= 0 {
		params.K = defaultSimilarK
	}

	var (
		scored []domain.ScoredSegment
		err    error
	)
	switch {
	case params.SegmentID != "" && params.Text != "":
		return "", fmt.Errorf("%w: give segment_id or text, not both", domain.ErrInvalidInput)
	case params.SegmentID != "":
		scored, err = t.similarity.SimilarSegments(ctx, params.SegmentID, params.K, params.Threshold)
	case params.Text != "":
		scored, err = t.similarity.SimilarToText(ctx, params.Text, params.K, params.Threshold)
	default:
		return "", fmt.Errorf("%w: segment_id or text is required", domain.ErrInvalidInput)
	}
	if err != nil {
		return "", err
	}

	hits := make([]similarHit, len(scored))
	for i, s := range scored {
		hits[i] = similarHit{SegmentID: s.SegmentID, Score: s.Score}
		if t.segments == nil {
			continue
		}
		seg, err := t.segments.GetSegment(ctx, s.SegmentID)
		if err != nil {
			logger.Debug("similar_segments: segment %s: %v", s.SegmentID, err)
			continue
		}
		hits[i].DocumentID = seg.DocumentID
		hits[i].Content = seg.Content
	}
	return encodeResult(hits)
}
