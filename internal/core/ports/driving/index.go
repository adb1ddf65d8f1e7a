package driving

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// IndexService chunks and embeds documents.
type IndexService interface {
	// Index processes the given documents, or all documents when
	// documentIDs is empty. limit > 0 caps the number of documents.
	// Re-running never re-embeds a segment that already has a vector.
	Index(ctx context.Context, documentIDs []string, limit int) (*domain.IndexReport, error)
}

// IngestService turns files into stored documents.
type IngestService interface {
	// IngestFile reads, normalises and stores one file.
	IngestFile(ctx context.Context, path string) (*domain.Document, error)

	// IngestDir ingests every supported file under dir.
	IngestDir(ctx context.Context, dir string) (*IngestReport, error)
}

// IngestReport summarises a directory ingestion.
type IngestReport struct {
	Ingested  int
	Unchanged int
	Skipped   int
	Failed    int
}
