package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerEngine = (*AnswerService)(nil)

// AnswerConfig controls retrieval and generation.
type AnswerConfig struct {
	// K is the number of chunks retrieved per question.
	K int

	// MinSimilarity drops hits scoring below it. Zero disables it.
	MinSimilarity float64

	// Timeout bounds the LLM call.
	Timeout time.Duration
}

// AnswerService answers questions from the ingested document.
type AnswerService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	chain    driven.RetrievalChain
	cfg      AnswerConfig
}

// NewAnswerService creates an answer service. chain may be nil when no LLM
// is configured; questions that retrieve chunks then fail with
// domain.ErrLLMUnavailable.
func NewAnswerService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	chain driven.RetrievalChain,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.K <= 0 {
		cfg.K = domain.DefaultRetrievalK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Duration(domain.DefaultLLMTimeout) * time.Second
	}
	return &AnswerService{
		embedder: embedder,
		store:    store,
		chain:    chain,
		cfg:      cfg,
	}
}

// Answer retrieves the chunks closest to question and asks the LLM to
// answer from them alone.
func (s *AnswerService) Answer(ctx context.Context, question string) (*domain.AnswerResult, error) {
	logger.Section("Answer")
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	info, err := s.store.Info(ctx)
	if err != nil {
		return nil, storageReadError(ctx, err)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider is configured", domain.ErrEmbeddingUnavailable)
	}
	if info.EmbeddingModel != "" && info.EmbeddingModel != s.embedder.ModelName() {
		return nil, fmt.Errorf("%w: document was indexed with %s, questions use %s",
			domain.ErrEmbeddingMismatch, info.EmbeddingModel, s.embedder.ModelName())
	}

	chunks, err := s.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		logger.Debug("No chunks retrieved, skipping the LLM")
		return domain.NotFoundResult(), nil
	}

	text, err := s.generate(ctx, question, chunks)
	if err != nil {
		return nil, err
	}

	if domain.IsNotFoundAnswer(text) {
		logger.Debug("Answer matched the not-found fallback")
		return domain.NotFoundResult(), nil
	}
	return &domain.AnswerResult{
		Answer:  text,
		Sources: domain.FormatSources(chunks),
	}, nil
}

// retrieve embeds the question and returns the nearest chunks in
// descending similarity.
func (s *AnswerService) retrieve(ctx context.Context, question string) ([]domain.Chunk, error) {
	start := time.Now()
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.store.Search(ctx, vector, s.cfg.K)
	if err != nil {
		return nil, storageReadError(ctx, err)
	}
	logger.Elapsed("retrieve", start)

	chunks := make([]domain.Chunk, 0, len(hits))
	for _, hit := range hits {
		if s.cfg.MinSimilarity != 0 && hit.Similarity < s.cfg.MinSimilarity {
			logger.Debug("Dropping chunk %d (similarity %.3f below %.3f)",
				hit.Chunk.Position, hit.Similarity, s.cfg.MinSimilarity)
			continue
		}
		logger.Debug("Chunk %d similarity %.3f", hit.Chunk.Position, hit.Similarity)
		chunks = append(chunks, hit.Chunk)
	}
	return chunks, nil
}

// storageReadError marks unclassified vector store failures as read
// failures. Errors the store already classified pass through.
func storageReadError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if domain.ClassifyError(err) != domain.ErrorClassUnknown {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageRead, err)
}

// generate runs the retrieval chain under the configured timeout.
func (s *AnswerService) generate(ctx context.Context, question string, chunks []domain.Chunk) (string, error) {
	if s.chain == nil {
		return "", fmt.Errorf("%w: no LLM is configured", domain.ErrLLMUnavailable)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	logger.Debug("Running %s chain with %d chunks", s.chain.Name(), len(chunks))
	text, err := s.chain.Run(runCtx, question, chunks)
	logger.Elapsed("generate", start)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyLLMError(err, s.cfg.Timeout)
	}
	return text, nil
}

// classifyLLMError maps a chain failure onto ErrLLMUnavailable (retryable:
// not configured, unreachable or timed out) or ErrLLMRequestFailed (the
// provider answered with an error).
func classifyLLMError(err error, timeout time.Duration) error {
	var providerErr *driven.ProviderError
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrLLMRequestFailed):
		return err
	case errors.As(err, &providerErr):
		return fmt.Errorf("%w: %w", domain.ErrLLMRequestFailed, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: no answer within %s", domain.ErrLLMUnavailable, timeout)
	default:
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
}
