// Package concepts tags segments with the concepts they discuss.
package concepts

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// Processor scores each segment against a concept dictionary.
// It implements the PostProcessor interface.
type Processor struct {
	concepts     []domain.Concept
	minRelevance float64
}

// Option configures the concepts processor.
type Option func(*Processor)

// WithConcepts replaces the default dictionary.
func WithConcepts(concepts []domain.Concept) Option {
	return func(p *Processor) {
		if len(concepts) > 0 {
			p.concepts = concepts
		}
	}
}

// WithMinRelevance drops topics scoring below min.
func WithMinRelevance(min float64) Option {
	return func(p *Processor) {
		if min >= 0 {
			p.minRelevance = min
		}
	}
}

// New creates a concepts processor.
func New(opts ...Option) *Processor {
	p := &Processor{concepts: DefaultConcepts}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "concepts"
}

// Concepts returns the dictionary the processor scores against.
func (p *Processor) Concepts() []domain.Concept {
	return p.concepts
}

// Process annotates the incoming segments with their topics under
// domain.MetaTopics. Segments with no matches are returned unchanged.
func (p *Processor) Process(ctx context.Context, _ *domain.Document, segments []domain.Segment) ([]domain.Segment, error) {
	for i := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		topics := p.Tag(segments[i].ID, segments[i].Content)
		if len(topics) == 0 {
			continue
		}
		if segments[i].Metadata == nil {
			segments[i].Metadata = make(map[string]any)
		}
		segments[i].Metadata[domain.MetaTopics] = topics
	}
	return segments, nil
}

// Tag returns the topics of one segment, ordered by concept name.
func (p *Processor) Tag(segmentID, content string) []domain.SegmentTopic {
	var topics []domain.SegmentTopic
	for _, c := range p.concepts {
		relevance, matched := Score(content, c)
		if len(matched) == 0 || relevance < p.minRelevance {
			continue
		}
		topics = append(topics, domain.SegmentTopic{
			SegmentID:    segmentID,
			Concept:      c.Name,
			Relevance:    relevance,
			MatchedTerms: matched,
		})
	}

	sort.Slice(topics, func(i, j int) bool { return topics[i].Concept < topics[j].Concept })
	return topics
}

// Score rates how strongly text discusses a concept. Each term scores
// min(weight * occurrences, 1) and the concept takes the best term.
// Matching is case-insensitive.
func Score(text string, c domain.Concept) (float64, []string) {
	lower := strings.ToLower(text)

	var (
		best    float64
		matched []string
	)
	for _, t := range c.Terms {
		n := strings.Count(lower, strings.ToLower(t.Term))
		if n == 0 {
			continue
		}
		matched = append(matched, t.Term)
		if s := min(t.Weight*float64(n), 1.0); s > best {
			best = s
		}
	}
	return best, matched
}
