// Package postprocessors turns normalised documents into segments.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
	"github.com/custodia-labs/rostrum/internal/logger"
)

// Pipeline runs stages in order. The first stage receives nil and
// creates segments; later stages annotate or replace them.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline from stages in execution order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process segments one speech. Cancellation is checked between stages.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Segment, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	var segments []domain.Segment
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, doc, segments)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		logger.Debug("%s: %s produced %d segment(s)", doc.ID, stage.Name(), len(out))
		segments = out
	}
	return segments, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names lists stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
