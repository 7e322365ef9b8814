package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// BuilderFunc builds a processor from its [pipeline.<name>] config table.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps the processor names accepted in pipeline config to their
// builders.
type Registry map[string]BuilderFunc

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return Registry{}
}

// Register binds name to build, replacing any earlier binding.
func (r Registry) Register(name string, build BuilderFunc) {
	r[name] = build
}

// Build constructs the named processor. Unknown names wrap
// domain.ErrUnsupportedType.
func (r Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	build, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor: %s", domain.ErrUnsupportedType, name)
	}
	return build(cfg)
}

// BuildPipeline constructs every processor cfg names, in order.
func (r Registry) BuildPipeline(cfg domain.PipelineConfig) (*Pipeline, error) {
	stages := make([]driven.PostProcessor, 0, len(cfg.Processors))
	for _, name := range cfg.Processors {
		stage, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return NewPipeline(stages...), nil
}

// Names returns the registered names, sorted.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}
