package driving

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// ConceptService tags segments with concepts and reports trends.
type ConceptService interface {
	// Tag scores every stored segment against the concept dictionary and
	// returns the number of segments tagged with at least one concept.
	Tag(ctx context.Context) (int, error)

	// Trends aggregates a concept's mentions per country and decade.
	Trends(ctx context.Context, concept string, countryCodes []string) ([]domain.ConceptTrend, error)

	// Concepts returns the concept dictionary.
	Concepts(ctx context.Context) ([]domain.Concept, error)

	// Events returns world events, all of them or those linked to concept.
	Events(ctx context.Context, concept string) ([]domain.WorldEvent, error)

	// EventImpacts compares a concept's mentions around each linked event.
	EventImpacts(ctx context.Context, concept string) ([]domain.EventImpact, error)

	// RegionalTrends reports the share of each region's speeches per year
	// that discuss a concept.
	RegionalTrends(ctx context.Context, concept string) ([]domain.RegionalTrend, error)
}
