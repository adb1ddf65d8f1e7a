// Package markdown normalises Markdown transcripts to plain text.
package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	codeBlock     = regexp.MustCompile("(?s)```.*?```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(^|\W)(\*\*|__|\*|_)(\S(?:.*?\S)?)(\*\*|__|\*|_)(\W|$)`)
	blockquote    = regexp.MustCompile(`(?m)^>\s?`)
	rule          = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	bullets       = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numbered      = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents. Speech naming and IDs follow the
// plain text normaliser.
type Normaliser struct {
	text *plaintext.Normaliser
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{text: plaintext.New()}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise strips Markdown formatting. The first H1 becomes the title of
// documents that are not named like a speech.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := n.text.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(raw.URI), filepath.Ext(raw.URI))
	if _, isSpeech := plaintext.ParseSpeechName(stem); !isSpeech {
		if title := firstHeading(doc.Content); title != "" {
			doc.Title = title
		}
	}
	doc.Content = Strip(doc.Content)
	doc.Metadata["format"] = "markdown"
	return doc, nil
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// Strip removes common Markdown syntax and keeps the prose.
func Strip(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = rule.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$1$3$5")
	content = blockquote.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "")
	content = numbered.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
