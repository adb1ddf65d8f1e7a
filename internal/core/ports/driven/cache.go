package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SimilarityCache stores derived similarity matrices.
// Matrices are read-only results, so a cache miss only costs recomputation.
type SimilarityCache interface {
	// GetMatrix returns a cached matrix. ok is false on a miss.
	GetMatrix(ctx context.Context, key string) (m *domain.SimilarityMatrix, ok bool, err error)

	// PutMatrix stores a matrix.
	PutMatrix(ctx context.Context, key string, m *domain.SimilarityMatrix) error
}
