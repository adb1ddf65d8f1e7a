package services

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService browses and removes ingested speeches.
type DocumentService struct {
	docStore driven.DocumentStore
	segments driven.SegmentStore
	vectors  driven.VectorIndex
	open     func(string) error
}

// NewDocumentService creates a new document service. The vector index is
// optional; when set, deleted segments are removed from it too.
func NewDocumentService(
	docStore driven.DocumentStore,
	segments driven.SegmentStore,
	vectors driven.VectorIndex,
) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		segments: segments,
		vectors:  vectors,
		open:     openURL,
	}
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx, filter)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetDetails returns display metadata including indexing progress.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	segs, err := s.segments.GetSegments(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("segments of %s: %w", documentID, err)
	}
	embedded := 0
	for i := range segs {
		if segs[i].Embedded() {
			embedded++
		}
	}

	// Flatten metadata to string map
	metadata := make(map[string]string, len(doc.Metadata))
	for key, value := range doc.Metadata {
		metadata[key] = fmt.Sprintf("%v", value)
	}

	return &driving.DocumentDetails{
		ID:            doc.ID,
		Title:         doc.Title,
		URI:           doc.URI,
		SegmentCount:  len(segs),
		EmbeddedCount: embedded,
		CreatedAt:     doc.CreatedAt,
		Metadata:      metadata,
	}, nil
}

// Delete removes a document. The store cascades to segments and vectors;
// the external index, if any, is cleaned up best effort.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	var vectorIDs []string
	if s.vectors != nil {
		segs, err := s.segments.GetSegments(ctx, documentID)
		if err != nil {
			return fmt.Errorf("segments of %s: %w", documentID, err)
		}
		for i := range segs {
			if segs[i].Embedded() {
				vectorIDs = append(vectorIDs, segs[i].ID)
			}
		}
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	for _, id := range vectorIDs {
		if err := s.vectors.Delete(ctx, id); err != nil {
			return fmt.Errorf("remove %s from vector index: %w", id, err)
		}
	}
	return nil
}

// Open opens the document's source file in the default application.
func (s *DocumentService) Open(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	return s.open(convertToOpenableURL(doc.URI))
}

// openURL opens a URL/path using the system default handler.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// convertToOpenableURL converts internal URIs to openable paths or URLs.
func convertToOpenableURL(uri string) string {
	// File URIs: file:///path/to/file -> /path/to/file (for local opening)
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}
