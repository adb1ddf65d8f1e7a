package domain

// Quotation is a passage a speech quotes, with the figure it is
// attributed to when one could be identified.
type Quotation struct {
	DocumentID  string  `json:"document_id"`
	Figure      string  `json:"figure,omitempty"`
	Text        string  `json:"text"`
	Context     string  `json:"context,omitempty"`
	Year        int     `json:"year"`
	CountryCode string  `json:"country_code,omitempty"`
	Direct      bool    `json:"direct"`
	Confidence  float64 `json:"confidence"`
	Offset      int     `json:"offset"`
}

// QuotationFilter selects stored quotations. Zero values match all.
type QuotationFilter struct {
	// Figure matches the attributed figure case-insensitively.
	Figure string

	// Query matches a substring of the quoted text case-insensitively.
	Query string

	// DirectOnly keeps quotations with an explicit attribution.
	DirectOnly bool

	Limit int
}

// QuotationGroup collects near-identical quotations from different
// speeches. Source and Explanation are set for well-known passages.
type QuotationGroup struct {
	Text        string   `json:"text"`
	Figure      string   `json:"figure,omitempty"`
	Source      string   `json:"source,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Count       int      `json:"count"`
	FirstYear   int      `json:"first_year"`
	LastYear    int      `json:"last_year"`
	Countries   []string `json:"countries"`
	DocumentIDs []string `json:"document_ids"`
}
