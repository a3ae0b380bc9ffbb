package postprocessors

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// BuilderFunc builds a processor from the shared processor config, which
// carries options such as the keyword count.
type BuilderFunc func(cfg map[string]any) (driven.ChunkProcessor, error)

// Registry resolves processor names from settings to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build returns ErrInvalidInput for a name nobody registered.
func (r *Registry) Build(name string, cfg map[string]any) (driven.ChunkProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (available: %s)",
			domain.ErrInvalidInput, name, strings.Join(r.Names(), ", "))
	}
	processor, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("processor %s: %w", name, err)
	}
	return processor, nil
}

// BuildPipeline builds the named processors in order. A name listed twice
// runs once, at its first position.
func (r *Registry) BuildPipeline(names []string, cfg map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		processor, err := r.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		p.Add(processor)
	}
	return p, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists registered processors alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
