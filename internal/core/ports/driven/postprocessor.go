package driven

import (
	"context"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// PostProcessor processes document content to produce segments.
// PostProcessors are chained in a pipeline (e.g., chunking, concept tagging).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns segments.
	// If the processor creates segments (e.g., chunker), it receives nil.
	// If the processor annotates segments (e.g., concepts), it receives and returns them.
	Process(ctx context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Segment, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Segment, error)
}
