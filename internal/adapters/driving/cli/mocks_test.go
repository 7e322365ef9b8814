package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// MockSettingsService implements driving.SettingsService for CLI tests.
type MockSettingsService struct {
	Settings    domain.AppSettings
	EnvSettings *domain.AppSettings
	ValidateErr error
	SetErr      error
	PingErr     error

	SetCalls      map[string]string
	EmbeddingSets []domain.AIProvider
	LLMSets       []domain.AIProvider
	LastAPIKey    string
}

func NewMockSettingsService() *MockSettingsService {
	return &MockSettingsService{
		Settings: domain.DefaultAppSettings(),
		SetCalls: make(map[string]string),
	}
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.Settings
	return &s, nil
}

func (m *MockSettingsService) Effective() (*domain.AppSettings, error) {
	if m.EnvSettings != nil {
		s := *m.EnvSettings
		return &s, nil
	}
	return m.Get()
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.Settings = *settings
	return nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.SetCalls[key] = value
	return nil
}

func (m *MockSettingsService) Keys() []string {
	return []string{"embedding.provider", "llm.provider", "retrieval.k"}
}

func (m *MockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.EmbeddingSets = append(m.EmbeddingSets, provider)
	m.Settings.Embedding.Provider = provider
	m.Settings.Embedding.Model = model
	m.LastAPIKey = apiKey
	return nil
}

func (m *MockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.LLMSets = append(m.LLMSets, provider)
	m.Settings.LLM.Provider = provider
	m.Settings.LLM.Model = model
	m.LastAPIKey = apiKey
	return nil
}

func (m *MockSettingsService) Validate() error { return m.ValidateErr }
func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *MockSettingsService) ValidateEmbeddingConfig() error { return m.PingErr }
func (m *MockSettingsService) ValidateLLMConfig() error { return m.PingErr }

// MockIngestor implements driving.Ingestor for CLI tests.
type MockIngestor struct {
	IngestFunc func(ctx context.Context, path string) (*domain.IngestReport, error)
	Calls      chan string
}

func (m *MockIngestor) Ingest(ctx context.Context, path string) (*domain.IngestReport, error) {
	if m.Calls != nil {
		m.Calls <- path
	}
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, path)
	}
	return &domain.IngestReport{
		DocumentID:     "doc-1",
		FileName:       "report.pdf",
		Chunks:         4,
		EmbeddingModel: "hashing-384",
		Duration:       1500 * time.Millisecond,
	}, nil
}

// MockAnswerEngine implements driving.AnswerEngine for CLI tests.
type MockAnswerEngine struct {
	AnswerFunc func(ctx context.Context, question string) (*domain.AnswerResult, error)
	Questions  []string
}

func (m *MockAnswerEngine) Answer(ctx context.Context, question string) (*domain.AnswerResult, error) {
	m.Questions = append(m.Questions, question)
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question)
	}
	return parisResult(), nil
}

// MockSession implements driving.Session for CLI tests.
type MockSession struct {
	Last *domain.AnswerResult
	File string
}

func (m *MockSession) Upload(_ context.Context, path string) (*driving.UploadResult, error) {
	m.File = path
	return &driving.UploadResult{Processed: true, Report: &domain.IngestReport{Chunks: 1}}, nil
}

func (m *MockSession) Ask(_ context.Context, _ string) (*domain.AnswerResult, error) {
	m.Last = parisResult()
	return m.Last, nil
}

func (m *MockSession) LastResult() *domain.AnswerResult { return m.Last }

func (m *MockSession) CurrentFile() string { return m.File }

func parisResult() *domain.AnswerResult {
	return &domain.AnswerResult{
		Answer: "The capital of France is Paris.",
		Sources: []domain.SourceView{
			{
				Chunk:    1,
				Content:  "France is a country in Europe.\nIts capital is Paris.",
				Metadata: map[string]string{"page": "1", "file_name": "france.pdf"},
			},
			{
				Chunk:    2,
				Content:  "Paris is on the Seine.",
				Metadata: map[string]string{"page": "2"},
			},
		},
	}
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	settings *MockSettingsService
	ingestor *MockIngestor
	answerer *MockAnswerEngine
	session  *MockSession
}

var mocks testServices

// setupTestServices installs mock services and returns a cleanup func
// that restores the previous services and global flag state.
func setupTestServices() func() {
	prevSettings, prevIngest, prevAnswer, prevSession := settingsService, ingestService, answerService, sessionService
	prevNewSettings, prevBuild, prevStdin := newSettings, buildServices, stdin
	prevTerminal, prevRun := isTerminal, runProgram

	mocks = testServices{
		settings: NewMockSettingsService(),
		ingestor: &MockIngestor{},
		answerer: &MockAnswerEngine{},
		session:  &MockSession{},
	}
	settingsService = mocks.settings
	ingestService = mocks.ingestor
	answerService = mocks.answerer
	sessionService = mocks.session

	return func() {
		settingsService, ingestService, answerService, sessionService = prevSettings, prevIngest, prevAnswer, prevSession
		newSettings, buildServices, stdin = prevNewSettings, prevBuild, prevStdin
		isTerminal, runProgram = prevTerminal, prevRun
		closeServices = nil
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores every flag of cmd and its children to its default,
// since cobra keeps parsed values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setContext gives cmd and every child ctx. Cobra only hands the root
// context down to commands that have none, so a context from an earlier
// Execute call would otherwise stick.
func setContext(ctx context.Context, cmd *cobra.Command) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(ctx, c)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	setContext(ctx, rootCmd)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// input replaces stdin with lines joined by newlines.
func input(lines ...string) {
	stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
}
