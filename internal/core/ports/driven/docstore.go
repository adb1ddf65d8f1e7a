package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// DocumentStore persists documents.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores a document. An existing document with the same
	// ID is replaced; its segments are deleted only when the content
	// changed.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents matching the filter, ordered by year then ID.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// DeleteDocument removes a document with its segments and vectors.
	DeleteDocument(ctx context.Context, id string) error
}

// SegmentStore persists segments and their vector links.
//
// A segment starts unembedded (VectorID nil). The link is written exactly
// once, in the same transaction as the vector row it points to.
type SegmentStore interface {
	// GetSegments retrieves all segments for a document in ordinal order.
	GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error)

	// GetSegment retrieves a specific segment by ID.
	GetSegment(ctx context.Context, id string) (*domain.Segment, error)

	// SaveSegments stores unembedded segments.
	SaveSegments(ctx context.Context, segments []domain.Segment) error

	// SaveEmbedded inserts new segments together with their vectors and
	// links in one transaction.
	SaveEmbedded(ctx context.Context, items []domain.EmbeddedSegment) error

	// LinkVectors inserts vectors for existing unembedded segments and sets
	// their links in one transaction. Fails with domain.ErrAlreadyEmbedded
	// if any segment is already linked; nothing is written in that case.
	LinkVectors(ctx context.Context, vectors []domain.Vector) error

	// CountUnembedded returns the number of segments without a vector.
	CountUnembedded(ctx context.Context) (int, error)

	// PendingDocuments returns up to limit IDs of documents that have no
	// segments or have a segment without a vector, ordered by year then
	// ID. A limit of zero or less returns them all.
	PendingDocuments(ctx context.Context, limit int) ([]string, error)
}

// VectorStore reads persisted vectors for similarity queries.
type VectorStore interface {
	// GetVector returns the vector linked to a segment.
	GetVector(ctx context.Context, segmentID string) (*domain.Vector, error)

	// ListVectors returns the vectors of all embedded segments whose
	// documents match the filter, ordered by document then ordinal.
	ListVectors(ctx context.Context, filter domain.DocumentFilter) ([]domain.Vector, error)
}
