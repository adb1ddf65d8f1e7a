package postprocessors

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// BuilderFunc creates a stage from its settings table.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Stage names one processor of a pipeline and its settings.
type Stage struct {
	Name   string
	Config map[string]any
}

// Registry maps stage names to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds a builder. The name must match the processor's Name().
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates one stage.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (known: %s)",
			domain.ErrInvalidInput, name, strings.Join(r.Names(), ", "))
	}
	return builder(cfg)
}

// BuildPipeline builds stages in order. A stage may appear once.
func (r *Registry) BuildPipeline(stages ...Stage) (*Pipeline, error) {
	p := NewPipeline()
	seen := make([]string, 0, len(stages))
	for _, st := range stages {
		if slices.Contains(seen, st.Name) {
			return nil, fmt.Errorf("%w: processor %q listed twice", domain.ErrInvalidInput, st.Name)
		}
		seen = append(seen, st.Name)

		proc, err := r.Build(st.Name, st.Config)
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
