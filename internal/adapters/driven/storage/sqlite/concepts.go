package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SaveConcepts replaces the concept dictionary. Existing segment topics
// are kept.
func (s *Store) SaveConcepts(ctx context.Context, concepts []domain.Concept) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM concepts"); err != nil {
			return fmt.Errorf("clearing concepts: %w", err)
		}
		for _, c := range concepts {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO concepts (name, description, category) VALUES (?, ?, ?)",
				c.Name, c.Description, c.Category)
			if err != nil {
				return fmt.Errorf("saving concept %s: %w", c.Name, err)
			}
			for _, term := range c.Terms {
				_, err := tx.ExecContext(ctx,
					"INSERT OR REPLACE INTO concept_terms (concept, term, weight) VALUES (?, ?, ?)",
					c.Name, term.Term, term.Weight)
				if err != nil {
					return fmt.Errorf("saving term %q of %s: %w", term.Term, c.Name, err)
				}
			}
		}
		return nil
	})
}

// ListConcepts returns the concept dictionary ordered by name, with terms
// ordered by descending weight.
func (s *Store) ListConcepts(ctx context.Context) ([]domain.Concept, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.description, c.category, t.term, t.weight
		FROM concepts c
		LEFT JOIN concept_terms t ON t.concept = c.name
		ORDER BY c.name, t.weight DESC, t.term
	`)
	if err != nil {
		return nil, fmt.Errorf("querying concepts: %w", err)
	}
	defer rows.Close()

	var concepts []domain.Concept
	for rows.Next() {
		var c domain.Concept
		var term sql.NullString
		var weight sql.NullFloat64
		if err := rows.Scan(&c.Name, &c.Description, &c.Category, &term, &weight); err != nil {
			return nil, fmt.Errorf("scanning concept: %w", err)
		}
		if n := len(concepts); n == 0 || concepts[n-1].Name != c.Name {
			concepts = append(concepts, c)
		}
		if term.Valid {
			last := &concepts[len(concepts)-1]
			last.Terms = append(last.Terms, domain.ConceptTerm{Term: term.String, Weight: weight.Float64})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating concepts: %w", err)
	}
	return concepts, nil
}

// SaveTopics replaces the topics of the given segments.
func (s *Store) SaveTopics(ctx context.Context, segmentIDs []string, topics []domain.SegmentTopic) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range segmentIDs {
			if _, err := tx.ExecContext(ctx, "DELETE FROM segment_topics WHERE segment_id = ?", id); err != nil {
				return fmt.Errorf("clearing topics of %s: %w", id, err)
			}
		}
		for _, t := range topics {
			terms, err := json.Marshal(t.MatchedTerms)
			if err != nil {
				return fmt.Errorf("marshalling matched terms: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO segment_topics (segment_id, concept, relevance, matched_terms)
				VALUES (?, ?, ?, ?)
			`, t.SegmentID, t.Concept, t.Relevance, string(terms))
			if err != nil {
				return fmt.Errorf("saving topic %s of %s: %w", t.Concept, t.SegmentID, err)
			}
		}
		return nil
	})
}

// Trends counts tagged segments and distinct speeches per country and
// decade, ordered by country then decade.
func (s *Store) Trends(ctx context.Context, concept string, countryCodes []string) ([]domain.ConceptTrend, error) {
	where, args := documentFilterSQL(domain.DocumentFilter{CountryCodes: countryCodes})
	query := `
		SELECT
			COALESCE(json_extract(d.metadata, '$.country_code'), '') AS country,
			(CAST(json_extract(d.metadata, '$.year') AS INTEGER) / 10) * 10 AS decade,
			COUNT(*) AS mentions,
			COUNT(DISTINCT d.id) AS speeches
		FROM segment_topics t
		JOIN segments s ON s.id = t.segment_id
		JOIN documents d ON d.id = s.document_id
		WHERE t.concept = ? AND ` + where + `
		GROUP BY country, decade
		ORDER BY country, decade`
	args = append([]any{concept}, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trends: %w", err)
	}
	defer rows.Close()

	trends := []domain.ConceptTrend{}
	for rows.Next() {
		tr := domain.ConceptTrend{Concept: concept}
		if err := rows.Scan(&tr.CountryCode, &tr.Decade, &tr.Mentions, &tr.Speeches); err != nil {
			return nil, fmt.Errorf("scanning trend: %w", err)
		}
		trends = append(trends, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trends: %w", err)
	}
	return trends, nil
}

// attachTopics loads the topics of a document's segments into their
// metadata under domain.MetaTopics.
func (s *Store) attachTopics(ctx context.Context, documentID string, segments []domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.segment_id, t.concept, t.relevance, t.matched_terms
		FROM segment_topics t
		JOIN segments s ON s.id = t.segment_id
		WHERE s.document_id = ?
		ORDER BY t.segment_id, t.relevance DESC, t.concept
	`, documentID)
	if err != nil {
		return fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	bySegment := make(map[string][]domain.SegmentTopic)
	for rows.Next() {
		var t domain.SegmentTopic
		var terms string
		if err := rows.Scan(&t.SegmentID, &t.Concept, &t.Relevance, &terms); err != nil {
			return fmt.Errorf("scanning topic: %w", err)
		}
		if err := json.Unmarshal([]byte(terms), &t.MatchedTerms); err != nil {
			return fmt.Errorf("unmarshalling matched terms: %w", err)
		}
		bySegment[t.SegmentID] = append(bySegment[t.SegmentID], t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating topics: %w", err)
	}

	for i := range segments {
		topics, ok := bySegment[segments[i].ID]
		if !ok {
			continue
		}
		if segments[i].Metadata == nil {
			segments[i].Metadata = make(map[string]any)
		}
		segments[i].Metadata[domain.MetaTopics] = topics
	}
	return nil
}

// SaveEvents replaces the world events and their concept links.
func (s *Store) SaveEvents(ctx context.Context, events []domain.WorldEvent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM world_events"); err != nil {
			return fmt.Errorf("clearing events: %w", err)
		}
		for _, e := range events {
			var end sql.NullInt64
			if e.EndYear > 0 {
				end = sql.NullInt64{Int64: int64(e.EndYear), Valid: true}
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO world_events (name, year, end_year, category, region, description)
				VALUES (?, ?, ?, ?, ?, ?)
			`, e.Name, e.Year, end, e.Category, e.Region, e.Description)
			if err != nil {
				return fmt.Errorf("saving event %s: %w", e.Name, err)
			}
			for _, c := range e.Concepts {
				_, err := tx.ExecContext(ctx,
					"INSERT OR IGNORE INTO event_concepts (event, concept) VALUES (?, ?)", e.Name, c)
				if err != nil {
					return fmt.Errorf("linking %s to %s: %w", e.Name, c, err)
				}
			}
		}
		return nil
	})
}

// ListEvents returns events ordered by year then name, each with its
// concepts sorted.
func (s *Store) ListEvents(ctx context.Context, concept string) ([]domain.WorldEvent, error) {
	query := `
		SELECT e.name, e.year, e.end_year, e.category, e.region, e.description, c.concept
		FROM world_events e
		LEFT JOIN event_concepts c ON c.event = e.name`
	var args []any
	if concept != "" {
		query += " WHERE e.name IN (SELECT event FROM event_concepts WHERE concept = ?)"
		args = append(args, concept)
	}
	query += " ORDER BY e.year, e.name, c.concept"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []domain.WorldEvent{}
	for rows.Next() {
		var e domain.WorldEvent
		var end sql.NullInt64
		var linked sql.NullString
		if err := rows.Scan(&e.Name, &e.Year, &end, &e.Category, &e.Region, &e.Description, &linked); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.EndYear = int(end.Int64)
		if n := len(events); n == 0 || events[n-1].Name != e.Name {
			events = append(events, e)
		}
		if linked.Valid {
			last := &events[len(events)-1]
			last.Concepts = append(last.Concepts, linked.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

// YearlyMentions counts segments tagged with concept per speech year.
func (s *Store) YearlyMentions(ctx context.Context, concept string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(json_extract(d.metadata, '$.year') AS INTEGER) AS year, COUNT(*)
		FROM segment_topics t
		JOIN segments s ON s.id = t.segment_id
		JOIN documents d ON d.id = s.document_id
		WHERE t.concept = ?
		GROUP BY year
	`, concept)
	if err != nil {
		return nil, fmt.Errorf("querying yearly mentions: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var year, n int
		if err := rows.Scan(&year, &n); err != nil {
			return nil, fmt.Errorf("scanning yearly mentions: %w", err)
		}
		counts[year] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating yearly mentions: %w", err)
	}
	return counts, nil
}

// RegionalTrends counts speeches per region and year together with those
// that have a segment tagged with concept, ordered by region then year.
func (s *Store) RegionalTrends(ctx context.Context, concept string) ([]domain.RegionalTrend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			COALESCE(NULLIF(json_extract(d.metadata, '$.region'), ''), ?) AS region,
			CAST(json_extract(d.metadata, '$.year') AS INTEGER) AS year,
			COUNT(*) AS speeches,
			SUM(CASE WHEN EXISTS (
				SELECT 1 FROM segment_topics t
				JOIN segments s ON s.id = t.segment_id
				WHERE s.document_id = d.id AND t.concept = ?
			) THEN 1 ELSE 0 END) AS mentioning
		FROM documents d
		GROUP BY region, year
		ORDER BY region, year
	`, domain.RegionOther, concept)
	if err != nil {
		return nil, fmt.Errorf("querying regional trends: %w", err)
	}
	defer rows.Close()

	trends := []domain.RegionalTrend{}
	for rows.Next() {
		tr := domain.RegionalTrend{Concept: concept}
		if err := rows.Scan(&tr.Region, &tr.Year, &tr.Speeches, &tr.Mentioning); err != nil {
			return nil, fmt.Errorf("scanning regional trend: %w", err)
		}
		if tr.Speeches > 0 {
			tr.Percent = 100 * float64(tr.Mentioning) / float64(tr.Speeches)
		}
		trends = append(trends, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating regional trends: %w", err)
	}
	return trends, nil
}
