package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func TestNormaliser_Basics(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/path/to/statement.html",
		MIMEType: "text/html",
		Content: []byte(`<html><head><title>General Debate</title><style>p{}</style></head>
<body><h1>Statement</h1><p>Hello <b>World</b>.</p><script>alert(1)</script></body></html>`),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "General Debate", doc.Title)
	assert.Contains(t, doc.Content, "Statement")
	assert.Contains(t, doc.Content, "World")
	assert.NotContains(t, doc.Content, "alert(1)")
	assert.NotContains(t, doc.Content, "<p>")
	assert.Equal(t, "text/html", doc.Metadata["mime_type"])
	assert.Equal(t, "html", doc.Metadata["format"])
}

func TestNormalise_SpeechFileName(t *testing.T) {
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/corpus/FRA_61_2006.html",
		Content: []byte("<p>Monsieur le Président.</p>"),
	})
	require.NoError(t, err)

	assert.Equal(t, "FRA_61_2006", doc.ID)
	assert.Equal(t, 2006, doc.Year())
	assert.Equal(t, "France", doc.MetaString(domain.MetaCountryName))
}

func TestNormalise_NilDocument(t *testing.T) {
	doc, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestExtractHTMLTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"title tag", "<title>Test Page</title>", "x.html", "Test Page"},
		{"entities decoded", "<title>A &amp; B</title>", "x.html", "A & B"},
		{"empty title falls back", "<title>  </title>", "/a/my-page_name.html", "my page name"},
		{"no title", "<p>body</p>", "/a/report.htm", "report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractHTMLTitle(tt.content, tt.uri))
		})
	}
}

func TestToText_CollapsesBlankLines(t *testing.T) {
	text, err := ToText("<p>One.</p><br><br><br><br><p>Two.</p>")
	require.NoError(t, err)

	assert.NotContains(t, text, "\n\n\n")
	assert.Contains(t, text, "One.")
	assert.Contains(t, text, "Two.")
}
