package postprocessors

import (
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/postprocessors/chunker"
	"github.com/custodia-labs/rostrum/internal/postprocessors/concepts"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("concepts", buildConcepts)
}

// DefaultStages returns the standard ingestion pipeline: chunk, then tag.
func DefaultStages(chunkSize, overlap int) []Stage {
	return []Stage{
		{Name: "chunker", Config: map[string]any{"chunk_size": chunkSize, "overlap": overlap}},
		{Name: "concepts"},
	}
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per segment (default: 2000)
//   - overlap (int): Overlapping characters between segments (default: 200)
//   - lookback (int): Sentence boundary search distance (default: 200)
//
// An explicit overlap must be smaller than the explicit chunk size.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	size, hasSize := getIntFromConfig(cfg, "chunk_size")
	overlap, hasOverlap := getIntFromConfig(cfg, "overlap")
	if hasSize && hasOverlap {
		if err := chunker.ValidateWindow(size, overlap); err != nil {
			return nil, err
		}
	}
	if hasSize {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if hasOverlap {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if lookback, ok := getIntFromConfig(cfg, "lookback"); ok {
		opts = append(opts, chunker.WithLookback(lookback))
	}

	return chunker.New(opts...), nil
}

// buildConcepts creates a concept tagger.
// Supported config keys:
//   - min_relevance (float): Drop topics scoring below this value
func buildConcepts(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []concepts.Option

	switch v := cfg["min_relevance"].(type) {
	case float64:
		opts = append(opts, concepts.WithMinRelevance(v))
	case int:
		opts = append(opts, concepts.WithMinRelevance(float64(v)))
	}

	return concepts.New(opts...), nil
}

// getIntFromConfig extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
