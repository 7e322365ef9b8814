package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type answerFixture struct {
	embedder *mockEmbeddingService
	store    *mockVectorStore
	chain    *mockChain
	service  *AnswerService
}

func newAnswerFixture(cfg AnswerConfig, hits ...driven.VectorHit) *answerFixture {
	f := &answerFixture{
		embedder: &mockEmbeddingService{vector: []float32{1, 0}},
		store:    &mockVectorStore{hits: hits},
		chain:    &mockChain{response: "The capital of France is Paris."},
	}
	f.service = NewAnswerService(f.embedder, f.store, f.chain, cfg)
	return f
}

func TestNewAnswerService_Defaults(t *testing.T) {
	service := NewAnswerService(nil, nil, nil, AnswerConfig{})

	assert.Equal(t, domain.DefaultRetrievalK, service.cfg.K)
	assert.Equal(t, 120*time.Second, service.cfg.Timeout)
}

func TestAnswer_Success(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{},
		hit(4, "Paris is the capital of France.", 0.9),
		hit(1, "France is in Europe.", 0.5),
	)

	result, err := f.service.Answer(context.Background(), "  What is the capital of France?  ")

	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris.", result.Answer)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, 1, result.Sources[0].Chunk)
	assert.Equal(t, "Paris is the capital of France.", result.Sources[0].Content)
	assert.Equal(t, "report.pdf", result.Sources[0].Metadata[domain.MetadataFileName])
	assert.NotContains(t, result.Sources[0].Metadata, domain.MetadataSource)
	assert.Equal(t, 2, result.Sources[1].Chunk)
	assert.Equal(t, 1, f.embedder.calls)
	assert.Equal(t, 1, f.chain.calls)
	assert.Equal(t, domain.DefaultRetrievalK, f.store.lastK)
	assert.Equal(t, "Paris is the capital of France.", f.chain.lastDocs[0].Content, "chunks keep retrieval order")
}

func TestAnswer_RetrievesK(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{K: 2},
		hit(0, "a", 0.9), hit(1, "b", 0.8), hit(2, "c", 0.7),
	)

	result, err := f.service.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Len(t, result.Sources, 2)
	assert.Equal(t, 2, f.store.lastK)
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{}, hit(0, "a", 1))

	_, err := f.service.Answer(context.Background(), " \t\n")

	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
	assert.Equal(t, 0, f.embedder.calls)
}

func TestAnswer_StoreNotInitialized(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{})
	f.store.infoErr = domain.ErrStoreNotInitialized

	_, err := f.service.Answer(context.Background(), "What is this about?")

	assert.ErrorIs(t, err, domain.ErrStoreNotInitialized)
	assert.Equal(t, domain.ErrorClassStorage, domain.ClassifyError(err))
	assert.Equal(t, 0, f.embedder.calls)
	assert.Equal(t, 0, f.chain.calls)
}

func TestAnswer_EmbeddingModelMismatch(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{}, hit(0, "a", 1))
	f.store.info = &domain.IndexInfo{EmbeddingModel: "text-embedding-3-small", Dimensions: 1536}

	_, err := f.service.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
	assert.Equal(t, 0, f.store.searchCalls)
}

func TestAnswer_NoEmbedder(t *testing.T) {
	service := NewAnswerService(nil, &mockVectorStore{}, &mockChain{}, AnswerConfig{})

	_, err := service.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAnswer_EmbeddingFails(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{}, hit(0, "a", 1))
	f.embedder.err = errors.New("connection refused")

	_, err := f.service.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 0, f.chain.calls)
}

func TestAnswer_SearchError(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{})
	f.store.searchErr = fmt.Errorf("%w: query has 3 dimensions", domain.ErrEmbeddingMismatch)

	_, err := f.service.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
}

func TestAnswer_StoreReadFailureIsStorageError(t *testing.T) {
	t.Run("search", func(t *testing.T) {
		f := newAnswerFixture(AnswerConfig{})
		f.store.searchErr = errors.New("no such table: chunks")

		_, err := f.service.Answer(context.Background(), "q")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStorageRead)
		assert.Equal(t, domain.ErrorClassStorage, domain.ClassifyError(err))
		assert.False(t, strings.HasPrefix(domain.UserMessage(err), "Error:"))
		assert.Contains(t, err.Error(), "no such table: chunks")
		assert.Equal(t, 0, f.chain.calls)
	})

	t.Run("info", func(t *testing.T) {
		f := newAnswerFixture(AnswerConfig{}, hit(0, "a", 0.9))
		f.store.infoErr = errors.New("database disk image is malformed")

		_, err := f.service.Answer(context.Background(), "q")

		assert.ErrorIs(t, err, domain.ErrStorageRead)
		assert.Equal(t, domain.ErrorClassStorage, domain.ClassifyError(err))
		assert.Equal(t, 0, f.embedder.calls)
	})

	t.Run("classified errors pass through", func(t *testing.T) {
		f := newAnswerFixture(AnswerConfig{})
		f.store.infoErr = fmt.Errorf("%w: empty", domain.ErrStoreNotInitialized)

		_, err := f.service.Answer(context.Background(), "q")

		assert.ErrorIs(t, err, domain.ErrStoreNotInitialized)
		assert.NotErrorIs(t, err, domain.ErrStorageRead)
	})
}

func TestAnswer_NoChunksSkipsLLM(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{})

	result, err := f.service.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, domain.NotFoundMessage, result.Answer)
	assert.Nil(t, result.Sources)
	assert.True(t, result.IsNotFound())
	assert.Equal(t, 0, f.chain.calls)
}

func TestAnswer_MinSimilarity(t *testing.T) {
	t.Run("drops weak hits", func(t *testing.T) {
		f := newAnswerFixture(AnswerConfig{MinSimilarity: 0.5}, hit(0, "strong", 0.8), hit(1, "weak", 0.2))

		result, err := f.service.Answer(context.Background(), "q")

		require.NoError(t, err)
		require.Len(t, result.Sources, 1)
		assert.Equal(t, "strong", result.Sources[0].Content)
	})

	t.Run("all below threshold is not found without LLM", func(t *testing.T) {
		f := newAnswerFixture(AnswerConfig{MinSimilarity: 0.5}, hit(0, "weak", 0.1))

		result, err := f.service.Answer(context.Background(), "q")

		require.NoError(t, err)
		assert.True(t, result.IsNotFound())
		assert.Equal(t, 0, f.chain.calls)
	})

	t.Run("zero disables", func(t *testing.T) {
		f := newAnswerFixture(AnswerConfig{}, hit(0, "anti", -0.4))

		result, err := f.service.Answer(context.Background(), "q")

		require.NoError(t, err)
		assert.Len(t, result.Sources, 1)
	})
}

func TestAnswer_FallbackHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		response string
		notFound bool
	}{
		{"exact message", domain.NotFoundMessage, true},
		{"exact message shouted", "  " + strings.ToUpper(domain.NotFoundMessage) + "\n", true},
		{"short paraphrase", "Sorry, I could not find that in the uploaded document.", true},
		{"missing document phrase", "I could not find that.", false},
		{"long paraphrase", "I could not find that in the uploaded document" + strings.Repeat(".", 60), false},
		{"normal answer", "Paris.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnswerFixture(AnswerConfig{}, hit(0, "a", 0.9))
			f.chain.response = tt.response

			result, err := f.service.Answer(context.Background(), "q")

			require.NoError(t, err)
			assert.Equal(t, tt.notFound, result.IsNotFound())
			if tt.notFound {
				assert.Equal(t, domain.NotFoundMessage, result.Answer)
			}
			assert.Equal(t, 1, f.chain.calls)
		})
	}
}

func TestAnswer_KeepsGeneratedTextVerbatim(t *testing.T) {
	f := newAnswerFixture(AnswerConfig{}, hit(0, "a", 0.9))
	f.chain.response = "\n  - Paris\n  - Lyon\n"

	result, err := f.service.Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "\n  - Paris\n  - Lyon\n", result.Answer)
}

func TestAnswer_LLMErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"provider rejected", &driven.ProviderError{Provider: "groq", StatusCode: 400, Message: "bad"}, domain.ErrLLMRequestFailed},
		{"wrapped provider error", fmt.Errorf("chat: %w", &driven.ProviderError{Provider: "openai", StatusCode: 500}), domain.ErrLLMRequestFailed},
		{"transport failure", errors.New("dial tcp: connection refused"), domain.ErrLLMUnavailable},
		{"no llm", errNoLLM, domain.ErrLLMUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrLLMUnavailable},
		{"already classified", fmt.Errorf("%w: x", domain.ErrLLMRequestFailed), domain.ErrLLMRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnswerFixture(AnswerConfig{}, hit(0, "a", 0.9))
			f.chain.err = tt.err

			result, err := f.service.Answer(context.Background(), "q")

			assert.Nil(t, result, "LLM failures are never turned into not-found answers")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.ErrorClassProvider, domain.ClassifyError(err))
		})
	}
}

func TestAnswer_NilChain(t *testing.T) {
	service := NewAnswerService(&mockEmbeddingService{vector: []float32{1, 0}},
		&mockVectorStore{hits: []driven.VectorHit{hit(0, "a", 1)}}, nil, AnswerConfig{})

	_, err := service.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswer_Timeout(t *testing.T) {
	llm := &mockLLMService{block: true}
	chain := NewStuffChain(llm, newMockPromptStore(), ChainOptions{})
	service := NewAnswerService(&mockEmbeddingService{vector: []float32{1, 0}},
		&mockVectorStore{hits: []driven.VectorHit{hit(0, "a", 1)}}, chain,
		AnswerConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := service.Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.True(t, domain.IsRetryable(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAnswer_CallerCancelled(t *testing.T) {
	llm := &mockLLMService{block: true}
	chain := NewStuffChain(llm, newMockPromptStore(), ChainOptions{})
	service := NewAnswerService(&mockEmbeddingService{vector: []float32{1, 0}},
		&mockVectorStore{hits: []driven.VectorHit{hit(0, "a", 1)}}, chain, AnswerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := service.Answer(ctx, "q")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnswer_SourcesAreStable(t *testing.T) {
	long := strings.Repeat("é", 600)
	f := newAnswerFixture(AnswerConfig{}, hit(0, long, 0.9))

	first, err := f.service.Answer(context.Background(), "q")
	require.NoError(t, err)
	second, err := f.service.Answer(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, first.Sources, second.Sources)
	assert.Equal(t, strings.Repeat("é", 500)+"...", first.Sources[0].Content)
}
