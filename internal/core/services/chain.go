package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure the chains implement the interface.
var (
	_ driven.RetrievalChain = (*StuffChain)(nil)
	_ driven.RetrievalChain = (*ChatChain)(nil)
)

// Prompt placeholders.
const (
	placeholderContext  = "{context}"
	placeholderQuestion = "{question}"
)

// errNoLLM is returned by chains built without an LLM.
var errNoLLM = errors.New("no LLM is configured")

// ChainOptions carries the generation settings shared by every chain.
type ChainOptions struct {
	// Temperature is sent with every request. Zero is the default.
	Temperature float64

	// MaxTokens caps the answer length. Zero leaves it to the provider.
	MaxTokens int
}

// NewRetrievalChain builds the chain named by chainType.
func NewRetrievalChain(
	chainType domain.ChainType, llm driven.LLMService, prompts driven.PromptStore, opts ChainOptions,
) (driven.RetrievalChain, error) {
	switch chainType {
	case domain.ChainStuff, "":
		return NewStuffChain(llm, prompts, opts), nil
	case domain.ChainChat:
		return NewChatChain(llm, prompts, opts), nil
	default:
		return nil, fmt.Errorf("%w: chain %q", domain.ErrUnsupportedType, chainType)
	}
}

// StuffChain stuffs the retrieved chunks into a single grounding prompt.
type StuffChain struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    ChainOptions
}

// NewStuffChain creates a StuffChain.
func NewStuffChain(llm driven.LLMService, prompts driven.PromptStore, opts ChainOptions) *StuffChain {
	return &StuffChain{llm: llm, prompts: prompts, opts: opts}
}

// Name identifies the chain.
func (c *StuffChain) Name() string {
	return string(domain.ChainStuff)
}

// Run fills the grounding template and calls Generate once.
func (c *StuffChain) Run(ctx context.Context, question string, docs []domain.Chunk) (string, error) {
	if c.llm == nil {
		return "", errNoLLM
	}
	template, err := c.prompts.Load(driven.PromptGrounding)
	if err != nil {
		return "", fmt.Errorf("loading prompt %s: %w", driven.PromptGrounding, err)
	}

	prompt := FillPrompt(template, BuildContext(docs), question)
	return c.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
}

// ChatChain sends the grounding instructions and context as a system
// message and the question as the user message.
type ChatChain struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    ChainOptions
}

// NewChatChain creates a ChatChain.
func NewChatChain(llm driven.LLMService, prompts driven.PromptStore, opts ChainOptions) *ChatChain {
	return &ChatChain{llm: llm, prompts: prompts, opts: opts}
}

// Name identifies the chain.
func (c *ChatChain) Name() string {
	return string(domain.ChainChat)
}

// Run calls Chat with a system and a user message.
func (c *ChatChain) Run(ctx context.Context, question string, docs []domain.Chunk) (string, error) {
	if c.llm == nil {
		return "", errNoLLM
	}
	template, err := c.prompts.Load(driven.PromptGroundingSystem)
	if err != nil {
		return "", fmt.Errorf("loading prompt %s: %w", driven.PromptGroundingSystem, err)
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: FillPrompt(template, BuildContext(docs), question)},
		{Role: driven.RoleUser, Content: question},
	}
	return c.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
}

// BuildContext joins chunk contents with blank lines, in retrieval order.
func BuildContext(docs []domain.Chunk) string {
	parts := make([]string, len(docs))
	for i := range docs {
		parts[i] = docs[i].Content
	}
	return strings.Join(parts, "\n\n")
}

// FillPrompt substitutes the context and question placeholders.
// Placeholders that appear inside the substituted text are left alone.
func FillPrompt(template, contextText, question string) string {
	parts := strings.Split(template, placeholderContext)
	for i := range parts {
		parts[i] = strings.ReplaceAll(parts[i], placeholderQuestion, question)
	}
	return strings.Join(parts, contextText)
}
