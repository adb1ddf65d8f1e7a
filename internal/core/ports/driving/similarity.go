package driving

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SimilarityService answers similarity queries over indexed segments.
// Pairs and Matrix forms are derived from the same pairwise computation.
type SimilarityService interface {
	// SimilarSegments returns the k segments most similar to a segment,
	// excluding itself, with score >= threshold.
	SimilarSegments(ctx context.Context, segmentID string, k int, threshold float64) ([]domain.ScoredSegment, error)

	// SimilarToText embeds text and returns the k most similar segments.
	SimilarToText(ctx context.Context, text string, k int, threshold float64) ([]domain.ScoredSegment, error)

	// Pairs returns scored segment pairs with score >= threshold, best first.
	Pairs(ctx context.Context, filter domain.DocumentFilter, threshold float64) ([]domain.SimilarityPair, error)

	// Matrix returns the dense symmetric score grid of the filtered segments.
	Matrix(ctx context.Context, filter domain.DocumentFilter, threshold float64) (*domain.SimilarityMatrix, error)
}
