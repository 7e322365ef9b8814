package driven

import (
	"context"
	"fmt"
)

// LLMService writes answers from a prompt that already carries the
// retrieved context.
type LLMService interface {
	// Generate sends a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat sends a system/user/assistant transcript. Providers without a
	// system role in the turn list lift system messages out.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions tunes a Generate call. Temperature 0 is sent as 0, not
// omitted, since answers must stay close to the source text.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a Chat transcript.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a Chat call.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

// ProviderError is returned by LLM and embedding adapters when the provider
// answered with an error response. Adapters return plain errors for
// transport failures so callers can tell the two apart.
type ProviderError struct {
	// Provider is the provider name, e.g. "openai".
	Provider string

	// StatusCode is the HTTP (or equivalent) status returned.
	StatusCode int

	// Message is the provider's error body.
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}
