package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

func TestNew(t *testing.T) {
	n := New()

	require.NotNil(t, n)
	assert.Equal(t, []string{"text/markdown", "text/x-markdown"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_NilInput(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_SpeechFile(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/corpus/FRA_78_2023.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Address by the President\n\nMr. President, **climate** is our _common_ [cause](https://un.org)."),
	}

	doc, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "FRA_78_2023", doc.ID)
	assert.Equal(t, 2023, doc.Year())
	assert.Equal(t, "FRA", doc.MetaString(domain.MetaCountryCode))
	assert.NotEqual(t, "Address by the President", doc.Title, "speech titles come from the file name")
	assert.Equal(t, "Address by the President\n\nMr. President, climate is our common cause.", doc.Content)
	assert.Equal(t, "markdown", doc.Metadata["format"])
}

func TestNormalise_OtherFileUsesHeading(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/notes/briefing.md",
		MIMEType: "text/markdown",
		Content:  []byte("Intro line\n# Briefing on disarmament\n\n- first point\n- second point"),
	}

	doc, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Briefing on disarmament", doc.Title)
	assert.NotEmpty(t, doc.ID)
	assert.Contains(t, doc.Content, "first point\nsecond point")
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "## Peace", "Peace"},
		{"bold and italic", "**strong** and *soft* and __under__", "strong and soft and under"},
		{"snake case kept", "the sustainable_development_goals", "the sustainable_development_goals"},
		{"link", "see [the Charter](https://un.org/charter)", "see the Charter"},
		{"image", "![flag](flag.png)Flag", "Flag"},
		{"inline code", "run `index`", "run index"},
		{"code block", "before\n```\ncode\n```\nafter", "before\n\nafter"},
		{"blockquote", "> quoted words", "quoted words"},
		{"numbered list", "1. one\n2. two", "one\ntwo"},
		{"rule", "above\n\n---\n\nbelow", "above\n\nbelow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}
