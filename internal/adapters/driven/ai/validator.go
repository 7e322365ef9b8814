package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// pingTimeout bounds a single validation ping.
const pingTimeout = 5 * time.Second

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building the service they
// describe and pinging it once. Unconfigured settings always pass.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator using the default ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout returns a copy of v that waits at most d for each ping.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	return &ConfigValidator{timeout: d}
}

// ValidateEmbedding pings the embedding provider described by cfg.
func (v *ConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(cfg)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	return v.probe(svc)
}

// ValidateLLM pings the LLM provider described by cfg.
func (v *ConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	return v.probe(svc)
}

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

func (v *ConfigValidator) probe(svc pinger) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
