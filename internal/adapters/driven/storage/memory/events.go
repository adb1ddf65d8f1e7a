package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SaveEvents replaces the world events.
func (s *Store) SaveEvents(_ context.Context, events []domain.WorldEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]domain.WorldEvent, len(events))
	for i, e := range events {
		e.Concepts = append([]string(nil), e.Concepts...)
		sort.Strings(e.Concepts)
		s.events[i] = e
	}
	sort.SliceStable(s.events, func(i, j int) bool {
		if s.events[i].Year != s.events[j].Year {
			return s.events[i].Year < s.events[j].Year
		}
		return s.events[i].Name < s.events[j].Name
	})
	return nil
}

// ListEvents returns events ordered by year then name.
func (s *Store) ListEvents(_ context.Context, concept string) ([]domain.WorldEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.WorldEvent{}
	for _, e := range s.events {
		if concept == "" || e.Raises(concept) {
			out = append(out, e)
		}
	}
	return out, nil
}

// YearlyMentions counts segments tagged with concept per speech year.
func (s *Store) YearlyMentions(_ context.Context, concept string) (map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[int]int)
	for id, segs := range s.segments {
		doc, ok := s.documents[id]
		if !ok {
			continue
		}
		for _, seg := range segs {
			if s.tagged(seg.ID, concept) {
				counts[doc.Year()]++
			}
		}
	}
	return counts, nil
}

// RegionalTrends counts speeches per region and year with those that
// have a segment tagged with concept.
func (s *Store) RegionalTrends(_ context.Context, concept string) ([]domain.RegionalTrend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		region string
		year   int
	}
	totals := make(map[key]*domain.RegionalTrend)
	for _, doc := range s.matching(domain.DocumentFilter{}) {
		region := doc.MetaString(domain.MetaRegion)
		if region == "" {
			region = domain.RegionOther
		}
		k := key{region, doc.Year()}
		tr, ok := totals[k]
		if !ok {
			tr = &domain.RegionalTrend{Concept: concept, Region: region, Year: k.year}
			totals[k] = tr
		}
		tr.Speeches++
		for _, seg := range s.segments[doc.ID] {
			if s.tagged(seg.ID, concept) {
				tr.Mentioning++
				break
			}
		}
	}

	out := make([]domain.RegionalTrend, 0, len(totals))
	for _, tr := range totals {
		tr.Percent = 100 * float64(tr.Mentioning) / float64(tr.Speeches)
		out = append(out, *tr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}

// SaveQuotations replaces the quotations of one document.
func (s *Store) SaveQuotations(_ context.Context, documentID string, quotes []domain.Quotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(quotes) == 0 {
		delete(s.quotations, documentID)
		return nil
	}
	stored := make([]domain.Quotation, len(quotes))
	for i, q := range quotes {
		q.DocumentID = documentID
		stored[i] = q
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Offset < stored[j].Offset })
	s.quotations[documentID] = stored
	return nil
}

// ListQuotations returns matching quotations ordered by year, document
// and position. Year and country come from the quoting document.
func (s *Store) ListQuotations(_ context.Context, filter domain.QuotationFilter) ([]domain.Quotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Quotation{}
	for _, doc := range s.matching(domain.DocumentFilter{}) {
		for _, q := range s.quotations[doc.ID] {
			if filter.Figure != "" && !strings.EqualFold(q.Figure, filter.Figure) {
				continue
			}
			if filter.Query != "" && !strings.Contains(strings.ToLower(q.Text), strings.ToLower(filter.Query)) {
				continue
			}
			if filter.DirectOnly && !q.Direct {
				continue
			}
			q.Year = doc.Year()
			q.CountryCode = doc.MetaString(domain.MetaCountryCode)
			out = append(out, q)
			if filter.Limit > 0 && len(out) == filter.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// tagged reports whether a segment carries concept. Callers hold the lock.
func (s *Store) tagged(segmentID, concept string) bool {
	for _, t := range s.topics[segmentID] {
		if t.Concept == concept {
			return true
		}
	}
	return false
}
