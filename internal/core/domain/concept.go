package domain

// Concept is an abstract idea tracked across speeches, detected through
// weighted indicator terms.
type Concept struct {
	Name        string
	Description string
	Category    string
	Terms       []ConceptTerm
}

// ConceptTerm is a phrase that indicates a concept. Weight is in (0, 1].
type ConceptTerm struct {
	Term   string
	Weight float64
}

// SegmentTopic links a segment to a concept it discusses.
type SegmentTopic struct {
	SegmentID    string
	Concept      string
	Relevance    float64
	MatchedTerms []string
}

// ConceptTrend counts how often a country discussed a concept per decade.
type ConceptTrend struct {
	Concept     string `json:"concept"`
	CountryCode string `json:"country_code"`
	Decade      int    `json:"decade"`
	Mentions    int    `json:"mentions"`
	Speeches    int    `json:"speeches"`
}

// Decade returns the decade a year falls in (1987 -> 1980).
func Decade(year int) int {
	return (year / 10) * 10
}

// WorldEvent is a historical event together with the concepts it is
// expected to bring into the debate.
type WorldEvent struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	EndYear     int      `json:"end_year,omitempty"`
	Category    string   `json:"category,omitempty"`
	Region      string   `json:"region,omitempty"`
	Description string   `json:"description,omitempty"`
	Concepts    []string `json:"concepts,omitempty"`
}

// Raises reports whether the event is linked to concept.
func (e WorldEvent) Raises(concept string) bool {
	for _, c := range e.Concepts {
		if c == concept {
			return true
		}
	}
	return false
}

// EventImpact counts segments tagged with a concept in the year before,
// the year of, and the year after an event.
type EventImpact struct {
	Event   WorldEvent `json:"event"`
	Concept string     `json:"concept"`
	Before  int        `json:"before"`
	During  int        `json:"during"`
	After   int        `json:"after"`
}

// Change is the shift in mentions from the year before to the event year.
func (i EventImpact) Change() int {
	return i.During - i.Before
}

// RegionalTrend is the share of a region's speeches in one year that
// discuss a concept.
type RegionalTrend struct {
	Concept    string  `json:"concept"`
	Region     string  `json:"region"`
	Year       int     `json:"year"`
	Speeches   int     `json:"speeches"`
	Mentioning int     `json:"mentioning"`
	Percent    float64 `json:"percent"`
}

// RegionOther groups speeches whose country has no known region.
const RegionOther = "Other"
