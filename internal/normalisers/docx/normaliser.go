// Package docx extracts the text of Word statements.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/normalisers/plaintext"
)

// MIMEType is the Office Open XML word processing type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents. Speech naming and IDs follow the
// plain text normaliser.
type Normaliser struct {
	text *plaintext.Normaliser
}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{text: plaintext.New()}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise reads word/document.xml, one line per paragraph. The core
// properties title is used for documents not named like a speech.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive", domain.ErrInvalidInput, raw.URI)
	}

	body, err := readPart(archive, "word/document.xml")
	if err != nil {
		return nil, err
	}
	text, err := parseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, raw.URI, err)
	}

	asText := *raw
	asText.Content = []byte(text)
	doc, err := n.text.Normalise(ctx, &asText)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(raw.URI), filepath.Ext(raw.URI))
	if _, isSpeech := plaintext.ParseSpeechName(stem); !isSpeech {
		if title := coreTitle(archive); title != "" {
			doc.Title = title
		}
	}
	doc.Metadata["format"] = "docx"
	return doc, nil
}

// readPart returns the bytes of a named archive member, or nil when the
// member is absent.
func readPart(archive *zip.Reader, name string) ([]byte, error) {
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

type document struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []struct {
		Text []string `xml:"t"`
	} `xml:"r"`
}

func parseDocument(content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	var doc document
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", err
	}

	var b strings.Builder
	for i, p := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, r := range p.Runs {
			for _, t := range r.Text {
				b.WriteString(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func coreTitle(archive *zip.Reader) string {
	content, err := readPart(archive, "docProps/core.xml")
	if err != nil || content == nil {
		return ""
	}
	var core struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
