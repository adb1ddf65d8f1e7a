package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/normalisers/docx"
	"github.com/custodia-labs/rostrum/internal/normalisers/html"
	"github.com/custodia-labs/rostrum/internal/normalisers/markdown"
	"github.com/custodia-labs/rostrum/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// extensionTypes maps file extensions to MIME types for ingestion.
var extensionTypes = map[string]string{
	".txt":   "text/plain",
	".text":  "text/plain",
	".md":    "text/markdown",
	".html":  "text/html",
	".htm":   "text/html",
	".xhtml": "application/xhtml+xml",
	".docx":  docx.MIMEType,
}

// Registry picks the highest priority normaliser for a MIME type.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with the built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(html.New())
	r.Register(markdown.New())
	r.Register(docx.New())
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise transforms a raw document using the best matching normaliser.
// An empty MIME type is inferred from the URI extension.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	mime := raw.MIMEType
	if mime == "" {
		mime = MIMETypeFor(raw.URI)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if t == mime {
				withType := *raw
				withType.MIMEType = mime
				return n.Normalise(ctx, &withType)
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, mime)
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types
}

// MIMETypeFor guesses a MIME type from a file name, or "" when unknown.
func MIMETypeFor(path string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(path))]
}

// Supported reports whether a file's extension can be ingested.
func Supported(path string) bool {
	return MIMETypeFor(path) != ""
}
