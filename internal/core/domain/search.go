package domain

// SearchOptions configures a full-text query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// CountryCodes filters to speeches by these countries.
	CountryCodes []string

	// YearFrom and YearTo bound the speech year. Zero means unbounded.
	YearFrom int
	YearTo   int
}

// SearchResult represents a single full-text hit.
type SearchResult struct {
	// Document is the speech the segment belongs to.
	Document Document

	// Segment is the matching segment.
	Segment Segment

	// Score is the relevance score (higher is better).
	Score float64

	// Highlight is a snippet with the matched terms marked.
	Highlight string
}

// QueryResult is the tabular output of a read-only SQL query.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	// Truncated is set when more rows matched than were returned.
	Truncated bool `json:"truncated,omitempty"`
}
