package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// AIConfigValidator probes the provider behind a settings value before it
// is saved. Settings that do not name a provider pass without a probe.
type AIConfigValidator interface {
	ValidateEmbedding(cfg *domain.EmbeddingSettings) error
	ValidateLLM(cfg *domain.LLMSettings) error
}
