package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Ensure SimilarityEngine implements the interface.
var _ driving.SimilarityService = (*SimilarityEngine)(nil)

// DefaultSimilarK is the neighbour count used when k <= 0.
const DefaultSimilarK = 10

// Similarity returns the cosine similarity of two vectors: 1 minus the
// cosine distance. It is symmetric and clamped to [-1, 1]. A zero-magnitude
// vector scores 0 against anything.
func Similarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &domain.DimensionMismatchError{Left: len(a), Right: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, score)), nil
}

// Query scores every candidate against target and returns those scoring
// at least threshold, best first. Ties keep candidate order.
func Query(target []float32, candidates []domain.Vector, threshold float64) ([]domain.ScoredSegment, error) {
	hits := make([]domain.ScoredSegment, 0, len(candidates))
	for _, c := range candidates {
		score, err := Similarity(target, c.Values)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", c.SegmentID, err)
		}
		if score >= threshold {
			hits = append(hits, domain.ScoredSegment{SegmentID: c.SegmentID, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits, nil
}

// Matrix computes the dense symmetric score grid of vectors in input
// order. The diagonal is 1 and cells below threshold are 0.
func Matrix(vectors []domain.Vector, threshold float64) (*domain.SimilarityMatrix, error) {
	n := len(vectors)
	m := &domain.SimilarityMatrix{
		SegmentIDs: make([]string, n),
		Threshold:  threshold,
		Cells:      make([][]float64, n),
	}
	for i, v := range vectors {
		m.SegmentIDs[i] = v.SegmentID
		m.Cells[i] = make([]float64, n)
		m.Cells[i][i] = 1
	}

	err := pairwise(vectors, func(i, j int, score float64) {
		if score < threshold {
			return
		}
		m.Cells[i][j] = score
		m.Cells[j][i] = score
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Pairs returns every distinct pair scoring at least threshold, best
// first. It walks the same upper triangle as Matrix.
func Pairs(vectors []domain.Vector, threshold float64) ([]domain.SimilarityPair, error) {
	var pairs []domain.SimilarityPair
	err := pairwise(vectors, func(i, j int, score float64) {
		if score >= threshold {
			pairs = append(pairs, domain.SimilarityPair{
				SegmentA: vectors[i].SegmentID,
				SegmentB: vectors[j].SegmentID,
				Score:    score,
			})
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Score > pairs[j].Score })
	return pairs, nil
}

// pairwise calls fn for every i < j with the similarity of vectors i and j.
func pairwise(vectors []domain.Vector, fn func(i, j int, score float64)) error {
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			score, err := Similarity(vectors[i].Values, vectors[j].Values)
			if err != nil {
				return fmt.Errorf("segments %s and %s: %w", vectors[i].SegmentID, vectors[j].SegmentID, err)
			}
			fn(i, j, score)
		}
	}
	return nil
}

// SimilarityEngine answers similarity queries over stored vectors.
type SimilarityEngine struct {
	vectors  driven.VectorStore
	index    driven.VectorIndex
	cache    driven.SimilarityCache
	embedder driven.EmbeddingService
}

// NewSimilarityEngine creates a similarity engine.
// The index, cache and embedder are optional (can be nil). Without an
// index, nearest neighbour queries scan every stored vector.
func NewSimilarityEngine(
	vectors driven.VectorStore,
	index driven.VectorIndex,
	cache driven.SimilarityCache,
	embedder driven.EmbeddingService,
) *SimilarityEngine {
	return &SimilarityEngine{
		vectors:  vectors,
		index:    index,
		cache:    cache,
		embedder: embedder,
	}
}

// SimilarSegments returns the k segments most similar to segmentID.
func (e *SimilarityEngine) SimilarSegments(
	ctx context.Context, segmentID string, k int, threshold float64,
) ([]domain.ScoredSegment, error) {
	v, err := e.vectors.GetVector(ctx, segmentID)
	if err != nil {
		return nil, fmt.Errorf("get vector: %w", err)
	}
	return e.nearest(ctx, v.Values, segmentID, k, threshold)
}

// SimilarToText embeds text and returns the k most similar segments.
func (e *SimilarityEngine) SimilarToText(
	ctx context.Context, text string, k int, threshold float64,
) ([]domain.ScoredSegment, error) {
	if e.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	values, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return e.nearest(ctx, values, "", k, threshold)
}

// nearest finds the k best segments for values, skipping exclude.
func (e *SimilarityEngine) nearest(
	ctx context.Context, values []float32, exclude string, k int, threshold float64,
) ([]domain.ScoredSegment, error) {
	if k <= 0 {
		k = DefaultSimilarK
	}

	var hits []domain.ScoredSegment
	if e.index != nil {
		logger.Debug("Nearest neighbours via vector index (k=%d)", k)
		found, err := e.index.Search(ctx, values, k+1)
		if err != nil {
			return nil, fmt.Errorf("vector index: %w", err)
		}
		for _, h := range found {
			if h.Similarity >= threshold {
				hits = append(hits, domain.ScoredSegment{SegmentID: h.SegmentID, Score: h.Similarity})
			}
		}
	} else {
		candidates, err := e.vectors.ListVectors(ctx, domain.DocumentFilter{})
		if err != nil {
			return nil, fmt.Errorf("list vectors: %w", err)
		}
		logger.Debug("Nearest neighbours via scan of %d vectors (k=%d)", len(candidates), k)
		hits, err = Query(values, candidates, threshold)
		if err != nil {
			return nil, err
		}
	}

	out := make([]domain.ScoredSegment, 0, k)
	for _, h := range hits {
		if h.SegmentID == exclude {
			continue
		}
		out = append(out, h)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// Pairs returns the scored pairs of the filtered segments.
func (e *SimilarityEngine) Pairs(
	ctx context.Context, filter domain.DocumentFilter, threshold float64,
) ([]domain.SimilarityPair, error) {
	vectors, err := e.vectors.ListVectors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}
	logger.Debug("Computing pairs over %d segments (threshold %.2f)", len(vectors), threshold)
	return Pairs(vectors, threshold)
}

// Matrix returns the score grid of the filtered segments, consulting the
// cache when one is configured. Cache failures only cost recomputation.
func (e *SimilarityEngine) Matrix(
	ctx context.Context, filter domain.DocumentFilter, threshold float64,
) (*domain.SimilarityMatrix, error) {
	vectors, err := e.vectors.ListVectors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}

	key := MatrixCacheKey(filter, threshold, vectors)
	if e.cache != nil {
		m, ok, err := e.cache.GetMatrix(ctx, key)
		switch {
		case err != nil:
			logger.Warn("Similarity cache read failed: %v", err)
		case ok:
			logger.Debug("Similarity cache hit: %s", key)
			return m, nil
		}
	}

	logger.Debug("Computing %dx%d matrix (threshold %.2f)", len(vectors), len(vectors), threshold)
	m, err := Matrix(vectors, threshold)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.PutMatrix(ctx, key, m); err != nil {
			logger.Warn("Similarity cache write failed: %v", err)
		}
	}
	return m, nil
}

// MatrixCacheKey derives a stable cache key from a filter, a threshold and
// the vectors the grid covers. Every embedding gets a fresh vector ID, so
// indexing, re-ingesting or deleting documents yields a new key.
func MatrixCacheKey(filter domain.DocumentFilter, threshold float64, vectors []domain.Vector) string {
	raw, _ := json.Marshal(struct {
		Filter    domain.DocumentFilter `json:"f"`
		Threshold float64               `json:"t"`
	}{filter, threshold})

	h := sha256.New()
	h.Write(raw)
	for i := range vectors {
		h.Write([]byte{0})
		h.Write([]byte(vectors[i].ID))
	}
	return "matrix:" + hex.EncodeToString(h.Sum(nil)[:12])
}
