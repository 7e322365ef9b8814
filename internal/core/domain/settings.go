package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderLocal is the in-process hashing embedder. Embeddings only.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGroq, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGroq
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderLocal:
		return "Local hashing embedder (offline)"
	default:
		return unknownDescription
	}
}

// APIKeyEnvVar returns the environment variable consulted when no API key
// is configured, or "" when the provider does not use one.
func (p AIProvider) APIKeyEnvVar() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGroq:
		return "GROQ_API_KEY"
	default:
		return ""
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of chunks embedded per request.
	BatchSize int

	// RequestsPerSecond limits embedding requests during ingestion.
	// Zero disables the limit.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// SupportsEmbeddings returns true if the provider can produce embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderLocal
}

// SupportsLLM returns true if the provider can generate answers.
func (p AIProvider) SupportsLLM() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGroq
}

// ChainType selects how the grounding prompt is sent to the LLM.
type ChainType string

// Available chain types.
const (
	// ChainStuff sends one prompt with the context stuffed into it.
	ChainStuff ChainType = "stuff"

	// ChainChat sends the grounding instructions as a system message and
	// the question as a user message.
	ChainChat ChainType = "chat"
)

// IsValid returns true if the chain type is recognised.
func (c ChainType) IsValid() bool {
	return c == ChainStuff || c == ChainChat
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic/Groq).
	APIKey string

	// Temperature is the sampling temperature. Answers use 0 by default.
	Temperature float64

	// TimeoutSeconds bounds a single answer generation.
	TimeoutSeconds int

	// Chain selects the retrieval chain shape.
	Chain ChainType
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || !l.Provider.SupportsLLM() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings controls similarity search.
type RetrievalSettings struct {
	// K is the number of chunks retrieved per question.
	K int

	// MinSimilarity drops retrieved chunks scoring below it.
	// Zero disables the threshold.
	MinSimilarity float64
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	// Size is the target chunk length in characters.
	Size int

	// Overlap is the number of characters shared by neighbouring chunks.
	Overlap int
}

// VectorStoreBackend identifies a vector store implementation.
type VectorStoreBackend string

// Available vector store backends.
const (
	// VectorStoreSQLite keeps vectors in an on-disk SQLite database.
	VectorStoreSQLite VectorStoreBackend = "sqlite"

	// VectorStoreQdrant keeps vectors in a Qdrant collection over gRPC.
	VectorStoreQdrant VectorStoreBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorStoreBackend) IsValid() bool {
	return b == VectorStoreSQLite || b == VectorStoreQdrant
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Backend selects the implementation.
	Backend VectorStoreBackend

	// Path is the on-disk directory for the sqlite backend.
	// Empty means <config dir>/vectorstore.
	Path string

	// QdrantHost and QdrantPort address the Qdrant gRPC endpoint.
	QdrantHost string
	QdrantPort int

	// Collection is the Qdrant collection name.
	Collection string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Retrieval   RetrievalSettings
	Chunking    ChunkingSettings
	VectorStore VectorStoreSettings
}

// Defaults used by DefaultAppSettings.
const (
	DefaultRetrievalK       = 3
	DefaultChunkSize        = 2000
	DefaultChunkOverlap     = 200
	DefaultLLMTimeout       = 120
	DefaultBatchSize        = 32
	DefaultQdrantHost       = "localhost"
	DefaultQdrantPort       = 6334
	DefaultQdrantCollection = "docqa"
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to the offline local embedder so a document can be
// ingested without any account. The LLM defaults to Groq and needs an API key.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderLocal,
			Model:     DefaultEmbeddingModels()[AIProviderLocal],
			BatchSize: DefaultBatchSize,
		},
		LLM: LLMSettings{
			Provider:       AIProviderGroq,
			Model:          DefaultLLMModels()[AIProviderGroq],
			Temperature:    0,
			TimeoutSeconds: DefaultLLMTimeout,
			Chain:          ChainStuff,
		},
		Retrieval: RetrievalSettings{
			K: DefaultRetrievalK,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorStoreSQLite,
			QdrantHost: DefaultQdrantHost,
			QdrantPort: DefaultQdrantPort,
			Collection: DefaultQdrantCollection,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-384",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.3-70b-versatile",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local hashing embedder
		"hashing-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the pipeline configuration for chunking settings.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "metadata"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.Size,
				"overlap":    c.Overlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(ChunkingSettings{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap})
}
