// Package groq configures the OpenAI-compatible adapter for Groq's hosted
// models.
package groq

import (
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.groq.com/openai/v1"
	DefaultLLMModel   = "llama-3.3-70b-versatile"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Groq LLM service.
type LLMConfig struct {
	// APIKey is the Groq API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.groq.com/openai/v1).
	BaseURL string

	// Model is the LLM model to use (default: llama-3.3-70b-versatile).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// NewLLMService creates an LLM service talking to Groq.
func NewLLMService(cfg LLMConfig) (*openai.LLMService, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return openai.NewLLMService(openai.LLMConfig{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
		Provider: "groq",
	})
}
