package tui

import (
	"errors"

	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/core/ports/driving"
)

// Ports groups the services the TUI talks to.
type Ports struct {
	// Search runs full-text queries. Required.
	Search driving.SearchService

	// Documents lists and loads speeches. Required.
	Documents driving.DocumentService

	// Similarity finds related passages. Without it the similar view is
	// disabled.
	Similarity driving.SimilarityService

	// Segments resolves similar segment IDs to their text. Optional.
	Segments driven.SegmentStore
}

// Validate reports missing required ports.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrMissingPorts
	}
	var errs []error
	if p.Search == nil {
		errs = append(errs, errors.New("search service is required"))
	}
	if p.Documents == nil {
		errs = append(errs, errors.New("document service is required"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrMissingPorts}, errs...)...)
	}
	return nil
}
