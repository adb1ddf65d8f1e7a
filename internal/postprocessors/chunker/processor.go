// Package chunker provides a sentence-aware text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per segment.
const DefaultChunkSize = 2000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultLookback is how far back from a cut point the chunker searches
// for a sentence terminator.
const DefaultLookback = 200

// segmentNamespace seeds deterministic segment IDs.
var segmentNamespace = uuid.MustParse("6f1c2b9e-5d4a-4c1e-9b0f-2a7e3d8c4b10")

// Processor splits document content into overlapping segments.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	lookback  int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the segment size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between segments in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithLookback sets the sentence-boundary search distance in characters.
// Zero disables snapping.
func WithLookback(lookback int) Option {
	return func(p *Processor) {
		if lookback >= 0 {
			p.lookback = lookback
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		lookback:  DefaultLookback,
	}

	for _, opt := range opts {
		opt(p)
	}

	// An overlap that would stall the window, usually a larger default
	// meeting a small configured size, falls back to a quarter of it.
	// Chunk rejects the same combination instead.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into segments.
// Input segments are ignored; this processor creates new segments from
// document content. Segment IDs derive from the document ID and ordinal,
// so re-chunking an unchanged document yields identical segments.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Segment) ([]domain.Segment, error) {
	if doc.Content == "" {
		return nil, nil
	}

	spans := p.spans(doc.Content)
	runes := []rune(doc.Content)
	segments := make([]domain.Segment, 0, len(spans))

	for _, sp := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ordinal := len(segments)
		segments = append(segments, domain.Segment{
			ID:         SegmentID(doc.ID, ordinal),
			DocumentID: doc.ID,
			Content:    string(runes[sp.start:sp.end]),
			Ordinal:    ordinal,
			Metadata: map[string]any{
				"char_start": sp.start,
				"char_end":   sp.end,
			},
		})
	}

	return segments, nil
}

// SegmentID returns the deterministic ID of a document's nth segment.
func SegmentID(documentID string, ordinal int) string {
	return uuid.NewSHA1(segmentNamespace, []byte(fmt.Sprintf("%s#%d", documentID, ordinal))).String()
}

// Chunk splits text into overlapping segments of at most size characters
// advancing by size - overlap. Every window after the first has its cut
// snapped back to the end of the last sentence within the default
// lookback. Whitespace-only segments are dropped. The result depends only
// on the arguments. Size must be positive and overlap in [0, size);
// other values fail with domain.ErrInvalidInput.
func Chunk(text string, size, overlap int) ([]string, error) {
	if err := ValidateWindow(size, overlap); err != nil {
		return nil, err
	}
	p := New(WithChunkSize(size), WithOverlap(overlap))
	runes := []rune(text)
	spans := p.spans(text)

	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = string(runes[sp.start:sp.end])
	}
	return out, nil
}

// ValidateWindow checks that size and overlap describe a window that
// advances.
func ValidateWindow(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidInput, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidInput, overlap, size)
	}
	return nil
}

type span struct {
	start, end int
}

// spans computes the rune ranges of the non-blank segments. The first
// window is cut at exactly chunkSize.
func (p *Processor) spans(text string) []span {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var out []span
	start := 0
	for start < n {
		end := start + p.chunkSize
		switch {
		case end >= n:
			end = n
		case start > 0:
			end = p.snap(runes, start, end)
		}

		if strings.TrimSpace(string(runes[start:end])) != "" {
			out = append(out, span{start: start, end: end})
		}

		if end >= n {
			break
		}
		start = end - p.overlap
	}
	return out
}

// snap moves a cut to just after the last ". " found within the lookback
// window. The cut never moves so far back that the next window would not
// advance past start.
func (p *Processor) snap(runes []rune, start, end int) int {
	floor := end - p.lookback
	if minEnd := start + p.overlap + 1; floor < minEnd {
		floor = minEnd
	}

	for i := end - 2; i >= floor-1 && i >= 0; i-- {
		if runes[i] == '.' && runes[i+1] == ' ' {
			return i + 2
		}
	}
	return end
}
