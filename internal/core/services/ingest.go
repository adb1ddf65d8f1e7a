package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// MaxIngestFileSize bounds the size of a single ingested file.
const MaxIngestFileSize = 16 << 20

// IngestService reads files, normalises them and stores the documents.
// Re-ingesting a file with unchanged text is a no-op. Changed text
// replaces the stored document and drops its segments, so the next index
// run re-chunks it.
type IngestService struct {
	docs        driven.DocumentStore
	segments    driven.SegmentStore
	normalisers driven.NormaliserRegistry
	index       driven.VectorIndex
}

// NewIngestService creates an ingest service.
func NewIngestService(
	docs driven.DocumentStore,
	segments driven.SegmentStore,
	normalisers driven.NormaliserRegistry,
) *IngestService {
	return &IngestService{docs: docs, segments: segments, normalisers: normalisers}
}

// SetVectorIndex removes the vectors of replaced segments from an
// external nearest neighbour index.
func (s *IngestService) SetVectorIndex(index driven.VectorIndex) {
	s.index = index
}

// IngestFile reads, normalises and stores one file. Unsupported types
// fail with ErrUnsupportedType and empty files with ErrInvalidInput.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.Document, error) {
	doc, _, err := s.ingest(ctx, path)
	return doc, err
}

// ingest stores one file and reports whether the stored document changed.
func (s *IngestService) ingest(ctx context.Context, path string) (*domain.Document, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if info.Size() > MaxIngestFileSize {
		return nil, false, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, path, MaxIngestFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		URI:     path,
		Content: content,
		Metadata: map[string]any{
			"file_name": filepath.Base(path),
			"file_size": info.Size(),
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("normalise %s: %w", path, err)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, false, fmt.Errorf("%w: %s has no text", domain.ErrInvalidInput, path)
	}

	changed, err := s.save(ctx, doc)
	if err != nil {
		return nil, false, err
	}
	if changed {
		logger.Debug("Ingested %s as %s (%d chars)", path, doc.ID, len(doc.Content))
	} else {
		logger.Debug("%s is unchanged since the last ingest", path)
	}
	return doc, changed, nil
}

// save stores doc unless the same title and text are already stored.
// When the text changed, the old segments' vectors leave the external
// index.
func (s *IngestService) save(ctx context.Context, doc *domain.Document) (bool, error) {
	prev, err := s.docs.GetDocument(ctx, doc.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		prev = nil
	case err != nil:
		return false, fmt.Errorf("get document %s: %w", doc.ID, err)
	}
	if prev != nil && prev.Content == doc.Content && prev.Title == doc.Title {
		return false, nil
	}

	var stale []string
	if prev != nil && prev.Content != doc.Content && s.index != nil {
		segs, err := s.segments.GetSegments(ctx, doc.ID)
		if err != nil {
			return false, fmt.Errorf("segments of %s: %w", doc.ID, err)
		}
		for i := range segs {
			if segs[i].Embedded() {
				stale = append(stale, segs[i].ID)
			}
		}
	}

	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return false, fmt.Errorf("save document %s: %w", doc.ID, err)
	}

	for _, id := range stale {
		if err := s.index.Delete(ctx, id); err != nil {
			logger.Warn("Vector index delete %s failed: %v", id, err)
		}
	}
	return true, nil
}

// IngestDir ingests every file under dir. Hidden entries are skipped,
// as are files no normaliser handles. A failing file is counted and
// logged; it does not stop the walk.
func (s *IngestService) IngestDir(ctx context.Context, dir string) (*driving.IngestReport, error) {
	logger.Section("Ingest")
	report := &driving.IngestReport{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		_, changed, err := s.ingest(ctx, path)
		switch {
		case err == nil && changed:
			report.Ingested++
		case err == nil:
			report.Unchanged++
		case errors.Is(err, domain.ErrUnsupportedType):
			logger.Debug("Skipping %s: unsupported type", path)
			report.Skipped++
		default:
			logger.Warn("Failed to ingest %s: %v", path, err)
			report.Failed++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", dir, err)
	}

	logger.Info("Ingested %d file(s), %d unchanged, skipped %d, failed %d",
		report.Ingested, report.Unchanged, report.Skipped, report.Failed)
	return report, nil
}
