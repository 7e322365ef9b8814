package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedBatchSize = "embedding.batch_size"
	keyEmbedRPS       = "embedding.requests_per_second"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMTimeout     = "llm.timeout_seconds"
	keyLLMChain       = "llm.chain"
	keyRetrievalK     = "retrieval.k"
	keyMinSimilarity  = "retrieval.min_similarity"
	keyChunkSize      = "chunking.chunk_size"
	keyChunkOverlap   = "chunking.overlap"
	keyStoreBackend   = "vector_store.backend"
	keyStorePath      = "vector_store.path"
	keyQdrantHost     = "vector_store.qdrant_host"
	keyQdrantPort     = "vector_store.qdrant_port"
	keyCollection     = "vector_store.collection"
)

// ollamaHostEnv overrides the Ollama base URL when none is configured.
const ollamaHostEnv = "OLLAMA_HOST"

// allKeys lists every key in display order.
var allKeys = []string{
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyEmbedBatchSize, keyEmbedRPS,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMTemperature, keyLLMTimeout, keyLLMChain,
	keyRetrievalK, keyMinSimilarity,
	keyChunkSize, keyChunkOverlap,
	keyStoreBackend, keyStorePath, keyQdrantHost, keyQdrantPort, keyCollection,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings as stored, with defaults
// for anything unset.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider:       llmProvider,
			Model:          s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:        s.configStore.GetString(keyLLMBaseURL),
			APIKey:         s.configStore.GetString(keyLLMAPIKey),
			Temperature:    s.configStore.GetFloat(keyLLMTemperature),
			TimeoutSeconds: s.getInt(keyLLMTimeout, defaults.LLM.TimeoutSeconds),
			Chain:          s.getChain(defaults.LLM.Chain),
		},
		Retrieval: domain.RetrievalSettings{
			K:             s.getInt(keyRetrievalK, defaults.Retrieval.K),
			MinSimilarity: s.configStore.GetFloat(keyMinSimilarity),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:    s.getBackend(defaults.VectorStore.Backend),
			Path:       s.configStore.GetString(keyStorePath),
			QdrantHost: s.getString(keyQdrantHost, defaults.VectorStore.QdrantHost),
			QdrantPort: s.getInt(keyQdrantPort, defaults.VectorStore.QdrantPort),
			Collection: s.getString(keyCollection, defaults.VectorStore.Collection),
		},
	}

	// An explicit zero overlap is allowed.
	if _, ok := s.configStore.Get(keyChunkOverlap); ok {
		settings.Chunking.Overlap = s.configStore.GetInt(keyChunkOverlap)
	}

	return settings, nil
}

// Effective returns Get with environment fallbacks applied: API keys from
// the provider's variable (e.g. GROQ_API_KEY) and the Ollama URL from
// OLLAMA_HOST. The result is for building services and is never saved.
func (s *SettingsService) Effective() (*domain.AppSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envFor(settings.Embedding.Provider.APIKeyEnvVar())
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envFor(settings.LLM.Provider.APIKeyEnvVar())
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = ollamaURL(s.getenv(ollamaHostEnv))
	}
	if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = ollamaURL(s.getenv(ollamaHostEnv))
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMTimeout, settings.LLM.TimeoutSeconds},
		{keyLLMChain, string(settings.LLM.Chain)},
		{keyRetrievalK, settings.Retrieval.K},
		{keyMinSimilarity, settings.Retrieval.MinSimilarity},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyStoreBackend, string(settings.VectorStore.Backend)},
		{keyStorePath, settings.VectorStore.Path},
		{keyQdrantHost, settings.VectorStore.QdrantHost},
		{keyQdrantPort, settings.VectorStore.QdrantPort},
		{keyCollection, settings.VectorStore.Collection},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so a key held in the
	// environment is never copied into the config file.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// Keys returns all known configuration keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(allKeys))
	copy(keys, allKeys)
	return keys
}

// Set parses value for key, validates it and persists it.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var stored any
	var err error
	switch key {
	case keyEmbedProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: %s does not support embeddings", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyLLMProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || !p.SupportsLLM() {
			return fmt.Errorf("%w: %s cannot generate answers", domain.ErrInvalidInput, value)
		}
		stored = value
	case keyLLMChain:
		if !domain.ChainType(value).IsValid() {
			return fmt.Errorf("%w: chain must be %q or %q", domain.ErrInvalidInput, domain.ChainStuff, domain.ChainChat)
		}
		stored = value
	case keyStoreBackend:
		if !domain.VectorStoreBackend(value).IsValid() {
			return fmt.Errorf("%w: backend must be %q or %q", domain.ErrInvalidInput, domain.VectorStoreSQLite, domain.VectorStoreQdrant)
		}
		stored = value
	case keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyStorePath, keyQdrantHost, keyCollection:
		stored = value
	case keyEmbedBatchSize, keyLLMTimeout, keyRetrievalK, keyChunkSize, keyQdrantPort:
		stored, err = parsePositiveInt(key, value)
	case keyChunkOverlap:
		var n int
		n, err = strconv.Atoi(value)
		if err == nil && n < 0 {
			err = fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		stored = n
	case keyEmbedRPS:
		stored, err = parseFloatIn(key, value, 0, 1e6)
	case keyLLMTemperature:
		stored, err = parseFloatIn(key, value, 0, 2)
	case keyMinSimilarity:
		stored, err = parseFloatIn(key, value, -1, 1)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
		}
		return err
	}

	if key == keyChunkSize || key == keyChunkOverlap {
		settings, err := s.Get()
		if err != nil {
			return err
		}
		size, overlap := settings.Chunking.Size, settings.Chunking.Overlap
		if key == keyChunkSize {
			size = stored.(int)
		} else {
			overlap = stored.(int)
		}
		if overlap >= size {
			return fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)", domain.ErrInvalidInput, overlap, size)
		}
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envFor(provider.APIKeyEnvVar()) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !provider.SupportsLLM() {
		return fmt.Errorf("provider %s cannot generate answers", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envFor(provider.APIKeyEnvVar()) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the effective settings can ingest and answer.
func (s *SettingsService) Validate() error {
	settings, err := s.Effective()
	if err != nil {
		return err
	}

	var problems []string
	if !settings.Embedding.IsConfigured() {
		problems = append(problems, fmt.Sprintf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		msg := fmt.Sprintf("LLM provider %q is not configured", settings.LLM.Provider)
		if env := settings.LLM.Provider.APIKeyEnvVar(); env != "" {
			msg += fmt.Sprintf(" (set %s)", env)
		}
		problems = append(problems, msg)
	}
	if settings.Chunking.Overlap >= settings.Chunking.Size {
		problems = append(problems, "chunk overlap must be smaller than chunk size")
	}
	if !settings.VectorStore.Backend.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown vector store backend %q", settings.VectorStore.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Effective()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Effective()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getChain(defaultVal domain.ChainType) domain.ChainType {
	chain := domain.ChainType(s.configStore.GetString(keyLLMChain))
	if !chain.IsValid() {
		return defaultVal
	}
	return chain
}

func (s *SettingsService) getBackend(defaultVal domain.VectorStoreBackend) domain.VectorStoreBackend {
	backend := domain.VectorStoreBackend(s.configStore.GetString(keyStoreBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) envFor(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(s.getenv(name))
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor keeps a configured URL for Ollama and clears it for cloud
// providers, which use their own endpoints.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider == domain.AIProviderOllama {
		return current
	}
	return ""
}

// ollamaURL turns an OLLAMA_HOST value ("host:port" or a URL) into a base URL.
func ollamaURL(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/")
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
	}
	return n, nil
}

func parseFloatIn(key, value string, lo, hi float64) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f < lo || f > hi {
		return 0, fmt.Errorf("%w: %s must be between %g and %g", domain.ErrInvalidInput, key, lo, hi)
	}
	return f, nil
}
