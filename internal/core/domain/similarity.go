package domain

import "slices"

// SimilarityPair is a scored pair of segments.
// Score is cosine similarity in [-1, 1].
type SimilarityPair struct {
	SegmentA string  `json:"segment_a"`
	SegmentB string  `json:"segment_b"`
	Score    float64 `json:"score"`
}

// ScoredSegment is a single query hit.
type ScoredSegment struct {
	SegmentID string  `json:"segment_id"`
	Score     float64 `json:"score"`
}

// SimilarityMatrix is a dense symmetric grid of pairwise scores.
// Row and column order follow SegmentIDs. The diagonal is always 1 and
// cells below the query threshold are 0.
type SimilarityMatrix struct {
	SegmentIDs []string    `json:"segment_ids"`
	Threshold  float64     `json:"threshold"`
	Cells      [][]float64 `json:"cells"`
}

// Size returns the number of rows.
func (m *SimilarityMatrix) Size() int {
	return len(m.SegmentIDs)
}

// DocumentFilter selects the documents whose segments take part in a
// similarity query. Zero values do not filter.
type DocumentFilter struct {
	DocumentIDs  []string `json:"document_ids,omitempty"`
	CountryCodes []string `json:"country_codes,omitempty"`
	YearFrom     int      `json:"year_from,omitempty"`
	YearTo       int      `json:"year_to,omitempty"`
	// Limit caps the number of segments considered. 0 means no cap.
	Limit int `json:"limit,omitempty"`
}

// Matches reports whether a document passes the filter.
func (f DocumentFilter) Matches(d *Document) bool {
	if len(f.DocumentIDs) > 0 && !slices.Contains(f.DocumentIDs, d.ID) {
		return false
	}
	if len(f.CountryCodes) > 0 && !slices.Contains(f.CountryCodes, d.MetaString(MetaCountryCode)) {
		return false
	}
	year := d.Year()
	if f.YearFrom > 0 && year < f.YearFrom {
		return false
	}
	if f.YearTo > 0 && year > f.YearTo {
		return false
	}
	return true
}
