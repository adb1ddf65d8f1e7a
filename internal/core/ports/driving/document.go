package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// DocumentService browses and removes ingested speeches.
type DocumentService interface {
	// List returns documents matching the filter.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetDetails returns display metadata including indexing progress.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Delete removes a document with its segments and vectors.
	Delete(ctx context.Context, documentID string) error

	// Open opens the source file in the default application.
	Open(ctx context.Context, documentID string) error
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// Title is the document title.
	Title string

	// URI is the original location.
	URI string

	// SegmentCount is the number of segments.
	SegmentCount int

	// EmbeddedCount is the number of segments with a vector.
	EmbeddedCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// Metadata contains flattened key-value pairs for display.
	Metadata map[string]string
}

// Indexed reports whether every segment has a vector.
func (d *DocumentDetails) Indexed() bool {
	return d.SegmentCount > 0 && d.EmbeddedCount == d.SegmentCount
}
