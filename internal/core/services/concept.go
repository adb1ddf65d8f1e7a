package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Ensure ConceptService implements the interface.
var _ driving.ConceptService = (*ConceptService)(nil)

// ConceptService tags stored segments with concepts and reports how
// their discussion changes across countries and decades.
type ConceptService struct {
	docs     driven.DocumentStore
	segments driven.SegmentStore
	store    driven.ConceptStore
	tagger   driven.ConceptTagger
	events   []domain.WorldEvent
}

// NewConceptService creates a concept service.
func NewConceptService(
	docs driven.DocumentStore,
	segments driven.SegmentStore,
	store driven.ConceptStore,
	tagger driven.ConceptTagger,
) *ConceptService {
	return &ConceptService{docs: docs, segments: segments, store: store, tagger: tagger}
}

// SetWorldEvents sets the events stored on the next Tag run and reported
// until then.
func (s *ConceptService) SetWorldEvents(events []domain.WorldEvent) {
	s.events = events
}

// Tag stores the tagger's dictionary and re-scores every stored segment,
// replacing previous tags. It returns the number of segments with at
// least one topic.
func (s *ConceptService) Tag(ctx context.Context) (int, error) {
	logger.Section("Concept Tagging")

	if err := s.store.SaveConcepts(ctx, s.tagger.Concepts()); err != nil {
		return 0, fmt.Errorf("save concepts: %w", err)
	}
	if s.events != nil {
		if err := s.store.SaveEvents(ctx, s.events); err != nil {
			return 0, fmt.Errorf("save events: %w", err)
		}
	}

	docs, err := s.docs.ListDocuments(ctx, domain.DocumentFilter{})
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	tagged := 0
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return tagged, err
		}

		segs, err := s.segments.GetSegments(ctx, docs[i].ID)
		if err != nil {
			return tagged, fmt.Errorf("segments of %s: %w", docs[i].ID, err)
		}
		if len(segs) == 0 {
			continue
		}

		ids := make([]string, len(segs))
		var topics []domain.SegmentTopic
		for j := range segs {
			ids[j] = segs[j].ID
			t := s.tagger.Tag(segs[j].ID, segs[j].Content)
			if len(t) > 0 {
				tagged++
				topics = append(topics, t...)
			}
		}

		if err := s.store.SaveTopics(ctx, ids, topics); err != nil {
			return tagged, fmt.Errorf("save topics of %s: %w", docs[i].ID, err)
		}
		logger.Debug("Tagged %s: %d topic(s) over %d segment(s)", docs[i].ID, len(topics), len(segs))
	}

	logger.Info("Tagged %d segment(s) across %d document(s)", tagged, len(docs))
	return tagged, nil
}

// Trends aggregates a concept per country and decade. Country codes are
// matched case-insensitively; an unknown concept is ErrNotFound.
func (s *ConceptService) Trends(ctx context.Context, concept string, countryCodes []string) ([]domain.ConceptTrend, error) {
	concept, err := s.knownConcept(ctx, concept)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(countryCodes))
	for _, c := range countryCodes {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, strings.ToUpper(c))
		}
	}

	return s.store.Trends(ctx, concept, codes)
}

// Concepts returns the stored dictionary, or the tagger's when nothing
// has been tagged yet.
func (s *ConceptService) Concepts(ctx context.Context) ([]domain.Concept, error) {
	stored, err := s.store.ListConcepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	if len(stored) > 0 {
		return stored, nil
	}
	return s.tagger.Concepts(), nil
}

// Events returns the stored world events, or the configured ones when
// none are stored. A non-empty concept keeps events linked to it.
func (s *ConceptService) Events(ctx context.Context, concept string) ([]domain.WorldEvent, error) {
	concept = strings.TrimSpace(concept)
	stored, err := s.store.ListEvents(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(stored) == 0 {
		stored = s.events
	}

	events := []domain.WorldEvent{}
	for _, e := range stored {
		if concept == "" || e.Raises(concept) {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Year != events[j].Year {
			return events[i].Year < events[j].Year
		}
		return events[i].Name < events[j].Name
	})
	return events, nil
}

// EventImpacts counts a concept's tagged segments in the year before,
// the year of and the year after each linked event, ordered by year.
func (s *ConceptService) EventImpacts(ctx context.Context, concept string) ([]domain.EventImpact, error) {
	concept, err := s.knownConcept(ctx, concept)
	if err != nil {
		return nil, err
	}

	events, err := s.Events(ctx, concept)
	if err != nil {
		return nil, err
	}
	mentions, err := s.store.YearlyMentions(ctx, concept)
	if err != nil {
		return nil, fmt.Errorf("yearly mentions of %s: %w", concept, err)
	}

	impacts := make([]domain.EventImpact, len(events))
	for i, e := range events {
		impacts[i] = domain.EventImpact{
			Event:   e,
			Concept: concept,
			Before:  mentions[e.Year-1],
			During:  mentions[e.Year],
			After:   mentions[e.Year+1],
		}
	}
	return impacts, nil
}

// RegionalTrends reports, per region and year, the share of speeches
// with at least one segment tagged with concept.
func (s *ConceptService) RegionalTrends(ctx context.Context, concept string) ([]domain.RegionalTrend, error) {
	concept, err := s.knownConcept(ctx, concept)
	if err != nil {
		return nil, err
	}
	return s.store.RegionalTrends(ctx, concept)
}

// knownConcept trims concept and checks it against the dictionary.
func (s *ConceptService) knownConcept(ctx context.Context, concept string) (string, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return "", fmt.Errorf("%w: concept is required", domain.ErrInvalidInput)
	}
	known, err := s.Concepts(ctx)
	if err != nil {
		return "", err
	}
	if !hasConcept(known, concept) {
		return "", fmt.Errorf("concept %q: %w", concept, domain.ErrNotFound)
	}
	return concept, nil
}

func hasConcept(concepts []domain.Concept, name string) bool {
	for _, c := range concepts {
		if c.Name == name {
			return true
		}
	}
	return false
}
