package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// ConceptStore persists concept definitions and segment tags.
type ConceptStore interface {
	// SaveConcepts replaces the concept dictionary.
	SaveConcepts(ctx context.Context, concepts []domain.Concept) error

	// ListConcepts returns the concept dictionary ordered by name.
	ListConcepts(ctx context.Context) ([]domain.Concept, error)

	// SaveTopics replaces the topics of the given segments.
	SaveTopics(ctx context.Context, segmentIDs []string, topics []domain.SegmentTopic) error

	// Trends aggregates tagged segments per country and decade.
	// An empty countryCodes slice includes all countries.
	Trends(ctx context.Context, concept string, countryCodes []string) ([]domain.ConceptTrend, error)

	// SaveEvents replaces the world event list and its concept links.
	SaveEvents(ctx context.Context, events []domain.WorldEvent) error

	// ListEvents returns events ordered by year then name. A non-empty
	// concept keeps only events linked to it.
	ListEvents(ctx context.Context, concept string) ([]domain.WorldEvent, error)

	// YearlyMentions counts segments tagged with concept per year.
	YearlyMentions(ctx context.Context, concept string) (map[int]int, error)

	// RegionalTrends reports, per region and year, how many speeches
	// were given and how many had a segment tagged with concept.
	// Documents without a region are grouped under domain.RegionOther.
	RegionalTrends(ctx context.Context, concept string) ([]domain.RegionalTrend, error)
}

// ConceptTagger scores segment text against a concept dictionary.
type ConceptTagger interface {
	// Concepts returns the dictionary.
	Concepts() []domain.Concept

	// Tag returns the topics of one segment.
	Tag(segmentID, content string) []domain.SegmentTopic
}
