package postprocessors

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
	"github.com/custodia-labs/docqa/internal/postprocessors/metadata"
)

// RegisterDefaults binds the built-in processors.
func RegisterDefaults(r Registry) {
	r.Register(chunker.Name, buildChunker)
	r.Register(metadata.Name, func(map[string]any) (driven.PostProcessor, error) {
		return metadata.New(), nil
	})
}

// DefaultPipeline builds chunker then metadata from the chunking settings.
func DefaultPipeline(c domain.ChunkingSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(domain.PipelineConfigFor(c))
}

// buildChunker reads chunk_size and overlap. Missing or invalid values keep
// the chunker defaults.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok && overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return chunker.New(opts...), nil
}

// getIntFromConfig accepts the integer shapes TOML and JSON decoding produce.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
