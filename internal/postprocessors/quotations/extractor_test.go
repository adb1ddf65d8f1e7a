package quotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func speech(id, content string, year int, country string) *domain.Document {
	return &domain.Document{
		ID:      id,
		Content: content,
		Metadata: map[string]any{
			domain.MetaYear:        year,
			domain.MetaCountryCode: country,
		},
	}
}

func TestExtract_Attribution(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		quote      string
		figure     string
		direct     bool
		confidence float64
	}{
		{
			name:       "famous figure before the quote",
			text:       `As Nelson Mandela once said, "It always seems impossible until it is done." We agree.`,
			quote:      "It always seems impossible until it is done.",
			figure:     "Nelson Mandela",
			direct:     true,
			confidence: 0.95,
		},
		{
			name:       "speaker after the quote",
			text:       `"Injustice anywhere is a threat to justice everywhere," said Martin Luther King.`,
			quote:      "Injustice anywhere is a threat to justice everywhere,",
			figure:     "Martin Luther King Jr.",
			direct:     true,
			confidence: 0.9,
		},
		{
			name:       "dash attribution",
			text:       `We recall “an eye for an eye makes the whole world blind” — Gandhi, in another age.`,
			quote:      "an eye for an eye makes the whole world blind",
			figure:     "Mahatma Gandhi",
			direct:     true,
			confidence: 0.95,
		},
		{
			name:       "in the words of",
			text:       `In the words of President Roosevelt: "The only thing we have to fear is fear itself."`,
			quote:      "The only thing we have to fear is fear itself.",
			figure:     "Franklin D. Roosevelt",
			direct:     true,
			confidence: 0.95,
		},
		{
			name:       "charter cue",
			text:       `Our Charter begins with the words "to save succeeding generations from the scourge of war".`,
			quote:      "to save succeeding generations from the scourge of war",
			figure:     "",
			direct:     false,
			confidence: 0.5,
		},
		{
			name:       "unknown speaker",
			text:       `Our delegation has noted: "the situation remains grave and deteriorating".`,
			quote:      "the situation remains grave and deteriorating",
			direct:     false,
			confidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes := New().Extract(speech("d1", tt.text, 1990, "FRA"))
			require.Len(t, quotes, 1)
			q := quotes[0]
			assert.Equal(t, tt.quote, q.Text)
			assert.Equal(t, tt.figure, q.Figure)
			assert.Equal(t, tt.direct, q.Direct)
			assert.InDelta(t, tt.confidence, q.Confidence, 1e-9)
			assert.Equal(t, "d1", q.DocumentID)
			assert.Equal(t, 1990, q.Year)
			assert.Equal(t, "FRA", q.CountryCode)
			assert.Contains(t, q.Context, tt.quote)
		})
	}
}

func TestExtract_FarFigureIsNotDirect(t *testing.T) {
	text := `Kennedy spoke of many things in his time and the world listened. ` +
		`Decades later the Assembly still debates the same questions of security and trust, ` +
		`and our delegation has often remarked that "nations must learn to live without fear of each other".`

	quotes := New().Extract(speech("d1", text, 2001, "USA"))
	require.Len(t, quotes, 1)
	assert.Equal(t, "John F. Kennedy", quotes[0].Figure)
	assert.False(t, quotes[0].Direct)
	assert.InDelta(t, 0.7, quotes[0].Confidence, 1e-9)
}

func TestExtract_SkipsUnattributedAndShortQuotes(t *testing.T) {
	text := `The so-called "peace dividend of the nineties" never came. ` +
		`Gandhi said "be brave". ` +
		`Others call it a "new world order" and move on.`

	assert.Empty(t, New().Extract(speech("d1", text, 1995, "IND")))
}

func TestExtract_DeduplicatesWithinDocument(t *testing.T) {
	text := `Mandela said "education is the most powerful weapon we have". ` +
		`And again, as Mandela said, "Education is the most powerful weapon we have."`

	quotes := New().Extract(speech("d1", text, 2005, "ZAF"))
	require.Len(t, quotes, 1)
	assert.Equal(t, "education is the most powerful weapon we have", quotes[0].Text)
}

func TestExtract_TextOrderAndOffsets(t *testing.T) {
	text := `Churchill wrote "we shall defend our island whatever the cost may be". ` +
		`Einstein said "peace cannot be kept by force, only by understanding".`

	quotes := New().Extract(speech("d1", text, 1950, "GBR"))
	require.Len(t, quotes, 2)
	assert.Equal(t, "Winston Churchill", quotes[0].Figure)
	assert.Equal(t, "Albert Einstein", quotes[1].Figure)
	assert.Less(t, quotes[0].Offset, quotes[1].Offset)
	assert.Equal(t, byte('"'), text[quotes[1].Offset])
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Never Again!  ", "never again"},
		{"...peace…  and\nwar...", "peace... and war"},
		{"— We the Peoples —", "we the peoples"},
		{"one.. two", "one... two"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestGroup(t *testing.T) {
	quotes := []domain.Quotation{
		{DocumentID: "d1", Text: "to save succeeding generations from the scourge of war", Year: 2000, CountryCode: "FRA"},
		{DocumentID: "d2", Text: "the situation in our region remains very grave", Year: 1995, CountryCode: "BRA"},
		{DocumentID: "d3", Text: "To save succeeding generations from the scourge of war,", Year: 1990, CountryCode: "BRA", Figure: "UN Charter"},
		{DocumentID: "d4", Text: "to save succeeding generation from the scourge of wars", Year: 2010, CountryCode: "FRA"},
	}

	groups := New().Group(quotes)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, 3, g.Count)
	assert.Equal(t, "to save succeeding generations from the scourge of war", g.Text)
	assert.Equal(t, "UN Charter", g.Figure)
	assert.Equal(t, "UN Charter Preamble", g.Source)
	assert.NotEmpty(t, g.Explanation)
	assert.Equal(t, 1990, g.FirstYear)
	assert.Equal(t, 2010, g.LastYear)
	assert.Equal(t, []string{"BRA", "FRA"}, g.Countries)
	assert.Equal(t, []string{"d1", "d3", "d4"}, g.DocumentIDs)
}

func TestGroup_LargestFirst(t *testing.T) {
	pair := "injustice anywhere is a threat to justice everywhere"
	triple := "development is the new name of peace for all peoples"
	quotes := []domain.Quotation{
		{DocumentID: "a", Text: pair},
		{DocumentID: "b", Text: triple},
		{DocumentID: "c", Text: pair},
		{DocumentID: "d", Text: triple},
		{DocumentID: "e", Text: triple},
	}

	groups := New().Group(quotes)
	require.Len(t, groups, 2)
	assert.Equal(t, 3, groups[0].Count)
	assert.Equal(t, "Pope Paul VI", groups[0].Source)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, "Martin Luther King Jr.", groups[1].Source)
}

func TestGroup_Threshold(t *testing.T) {
	quotes := []domain.Quotation{
		{DocumentID: "a", Text: "we must act together against hunger now"},
		{DocumentID: "b", Text: "we must act together against poverty now"},
	}

	assert.Empty(t, New(WithSimilarity(0.99)).Group(quotes))
	assert.Len(t, New(WithSimilarity(0.7)).Group(quotes), 1)
}
