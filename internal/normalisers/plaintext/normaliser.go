// Package plaintext normalises plain text files, recognising debate
// speeches named <ISO3>_<session>_<year>.txt.
package plaintext

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// speechName matches speech file stems such as USA_75_2020.
var speechName = regexp.MustCompile(`^([A-Z]{2,3})_(\d{1,3})_(\d{4})$`)

// documentNamespace seeds IDs of documents without a speech file name.
var documentNamespace = uuid.MustParse("0b9f7d2e-3c41-4a8e-b6d5-9e2f1a7c5d83")

// Normaliser handles plain text documents.
type Normaliser struct {
	now func() time.Time
}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw document to a document.
// Speech files get their ID from the file stem so re-ingesting the same
// file replaces the earlier copy. Other files get an ID derived from the URI.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc := &domain.Document{
		URI:       raw.URI,
		Content:   normaliseWhitespace(string(raw.Content)),
		Metadata:  copyMetadata(raw.Metadata),
		CreatedAt: n.now(),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType

	stem := strings.TrimSuffix(filepath.Base(raw.URI), filepath.Ext(raw.URI))
	if meta, ok := ParseSpeechName(stem); ok {
		doc.ID = stem
		for k, v := range meta {
			doc.Metadata[k] = v
		}
		doc.Title = fmt.Sprintf("%s, session %d (%d)",
			doc.MetaString(domain.MetaCountryName), meta[domain.MetaSession], meta[domain.MetaYear])
	} else {
		doc.ID = uuid.NewSHA1(documentNamespace, []byte(raw.URI)).String()
		doc.Title = extractTitle(raw)
	}

	return doc, nil
}

// ParseSpeechName extracts country, session and year metadata from a
// file stem such as USA_75_2020.
func ParseSpeechName(stem string) (map[string]any, bool) {
	m := speechName.FindStringSubmatch(stem)
	if m == nil {
		return nil, false
	}
	session, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, false
	}

	country := LookupCountry(m[1])
	meta := map[string]any{
		domain.MetaCountryCode: country.Code,
		domain.MetaCountryName: country.Name,
		domain.MetaSession:     session,
		domain.MetaYear:        year,
	}
	if country.Region != "" {
		meta[domain.MetaRegion] = country.Region
	}
	return meta, true
}

// extractTitle checks metadata for title first, then falls back to URI.
func extractTitle(raw *domain.RawDocument) string {
	if title, ok := raw.Metadata["title"].(string); ok && title != "" {
		return title
	}

	filename := filepath.Base(raw.URI)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// normaliseWhitespace converts line endings and strips the byte order mark.
func normaliseWhitespace(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
