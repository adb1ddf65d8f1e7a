package html

import (
	"context"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var documentNamespace = uuid.MustParse("4e6a0c1d-8b2f-4f7a-a3c9-5d1e0b8f2a64")

var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML page to a document whose content is Markdown.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	rawContent := string(raw.Content)

	content, err := ToText(rawContent)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", raw.URI, err)
	}

	doc := &domain.Document{
		URI:       raw.URI,
		Title:     extractHTMLTitle(rawContent, raw.URI),
		Content:   content,
		Metadata:  make(map[string]any, len(raw.Metadata)+2),
		CreatedAt: time.Now(),
	}
	for k, v := range raw.Metadata {
		doc.Metadata[k] = v
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "html"

	stem := strings.TrimSuffix(filepath.Base(raw.URI), filepath.Ext(raw.URI))
	if meta, ok := plaintext.ParseSpeechName(stem); ok {
		doc.ID = stem
		for k, v := range meta {
			doc.Metadata[k] = v
		}
	} else {
		doc.ID = uuid.NewSHA1(documentNamespace, []byte(raw.URI)).String()
	}

	return doc, nil
}

// ToText converts HTML to Markdown with collapsed blank lines.
func ToText(page string) (string, error) {
	md, err := htmltomarkdown.ConvertString(page)
	if err != nil {
		return "", err
	}
	md = multiNewlines.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md), nil
}

// extractHTMLTitle extracts a title from the HTML content or falls back to filename.
func extractHTMLTitle(content, uri string) string {
	if matches := titleTag.FindStringSubmatch(content); len(matches) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(matches[1])); title != "" {
			return title
		}
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
