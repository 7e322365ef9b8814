package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Every text embeds to vector.
type mockEmbeddingService struct {
	mu         sync.Mutex
	model      string
	vector     []float32
	err        error
	calls      int
	batchSizes []int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = m.vector
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(m.vector) }

func (m *mockEmbeddingService) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	info        *domain.IndexInfo
	infoErr     error
	hits        []driven.VectorHit
	searchErr   error
	replaceErr  error
	searchCalls int
	lastK       int

	replacedDoc    *domain.Document
	replacedChunks []domain.Chunk
	replacedModel  string
}

func (m *mockVectorStore) Replace(_ context.Context, doc *domain.Document, chunks []domain.Chunk, model string) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replacedDoc = doc
	m.replacedChunks = chunks
	m.replacedModel = model
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.searchCalls++
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorStore) Info(_ context.Context) (*domain.IndexInfo, error) {
	if m.infoErr != nil {
		return nil, m.infoErr
	}
	if m.info == nil {
		return &domain.IndexInfo{EmbeddingModel: "mock-embed", Dimensions: 2, ChunkCount: len(m.hits)}, nil
	}
	return m.info, nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response      string
	err           error
	generateCalls int
	chatCalls     int
	lastPrompt    string
	lastMessages  []driven.ChatMessage
	lastGenerate  driven.GenerateOptions
	lastChat      driven.ChatOptions
	block         bool
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	m.lastGenerate = opts
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

func (m *mockLLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	m.lastChat = opts
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptGrounding:       "Context:\n{context}\n\nQuestion: {question}\nAnswer:",
		driven.PromptGroundingSystem: "Answer only from:\n{context}",
	}}
}

// mockChain implements driven.RetrievalChain for testing.
type mockChain struct {
	response string
	err      error
	calls    int
	lastDocs []domain.Chunk
}

func (m *mockChain) Run(_ context.Context, _ string, docs []domain.Chunk) (string, error) {
	m.calls++
	m.lastDocs = docs
	return m.response, m.err
}

func (m *mockChain) Name() string { return "mock" }

// mockNormaliser implements driven.Normaliser for testing. It returns the
// raw bytes as the document text.
type mockNormaliser struct {
	err   error
	calls int
}

func (m *mockNormaliser) SupportedMIMETypes() []string { return []string{"application/pdf"} }

func (m *mockNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &driven.NormaliseResult{Document: domain.Document{
		ID:       "doc-1",
		URI:      raw.URI,
		Title:    "Test",
		Content:  string(raw.Content),
		Metadata: raw.Metadata,
	}}, nil
}

// mockPipeline implements driven.PostProcessorPipeline for testing.
type mockPipeline struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Chunk, len(m.chunks))
	copy(out, m.chunks)
	for i := range out {
		out[i].DocumentID = doc.ID
	}
	return out, nil
}

// mockIngestor implements driving.Ingestor for testing.
type mockIngestor struct {
	err   error
	calls int
	paths []string
}

func (m *mockIngestor) Ingest(_ context.Context, path string) (*domain.IngestReport, error) {
	m.calls++
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestReport{DocumentID: "doc-1", Chunks: 2}, nil
}

// mockAnswerEngine implements driving.AnswerEngine for testing.
type mockAnswerEngine struct {
	result *domain.AnswerResult
	err    error
	calls  int
}

func (m *mockAnswerEngine) Answer(_ context.Context, _ string) (*domain.AnswerResult, error) {
	m.calls++
	return m.result, m.err
}

var (
	_ driven.EmbeddingService      = (*mockEmbeddingService)(nil)
	_ driven.VectorStore           = (*mockVectorStore)(nil)
	_ driven.LLMService            = (*mockLLMService)(nil)
	_ driven.PromptStore           = (*mockPromptStore)(nil)
	_ driven.RetrievalChain        = (*mockChain)(nil)
	_ driven.Normaliser            = (*mockNormaliser)(nil)
	_ driven.PostProcessorPipeline = (*mockPipeline)(nil)
	_ driving.Ingestor             = (*mockIngestor)(nil)
	_ driving.AnswerEngine         = (*mockAnswerEngine)(nil)
)

// --- Test helpers ---

func hit(position int, content string, similarity float64) driven.VectorHit {
	return driven.VectorHit{
		Chunk: domain.Chunk{
			ID:       content,
			Content:  content,
			Position: position,
			Metadata: map[string]any{
				domain.MetadataSource:   "/home/user/secret/report.pdf",
				domain.MetadataFileName: "report.pdf",
				domain.MetadataPosition: position,
			},
		},
		Similarity: similarity,
	}
}
