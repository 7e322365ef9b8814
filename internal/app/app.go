// Package app wires the driven adapters into the core services.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// PromptsSubdir is where prompt templates live inside the config dir.
const PromptsSubdir = "prompts"

// Options controls how the application is assembled.
type Options struct {
	// ConfigDir holds config.toml, prompts and the sqlite store.
	// Empty means ~/.docqa.
	ConfigDir string

	// Pdftotext extracts text with the poppler tool instead of the
	// in-process parser.
	Pdftotext bool
}

// App holds the assembled services and the resources they own.
type App struct {
	Settings *domain.AppSettings
	Ingestor driving.Ingestor
	Answerer driving.AnswerEngine
	Session  driving.Session

	// Warnings lists non-fatal problems found while building, such as a
	// missing LLM API key.
	Warnings []string

	ai    *ai.InitResult
	store driven.VectorStore
}

// ResolveConfigDir returns dir, or ~/.docqa when dir is empty.
func ResolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return file.DefaultDir()
}

// NewSettingsService opens the TOML config in configDir.
func NewSettingsService(configDir string) (*services.SettingsService, error) {
	configDir, err := ResolveConfigDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// Build assembles the services from the effective settings.
func Build(ctx context.Context, opts Options, settingsService driving.SettingsService) (*App, error) {
	if settingsService == nil {
		return nil, errors.New("settings service is required")
	}
	configDir, err := ResolveConfigDir(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	settings, err := settingsService.Effective()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	logger.Section("Startup")
	logger.Debug("Config dir: %s", configDir)
	logger.Debug("Embedding: %s/%s, LLM: %s/%s, store: %s",
		settings.Embedding.Provider, settings.Embedding.Model,
		settings.LLM.Provider, settings.LLM.Model, settings.VectorStore.Backend)

	a := &App{Settings: settings}

	a.ai, err = ai.Initialise(*settings)
	if err != nil {
		return nil, err
	}
	a.Warnings = append(a.Warnings, a.ai.Warnings...)

	a.store, err = vectorstore.New(settings.VectorStore, configDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	normaliser, err := newNormaliser(opts.Pdftotext)
	if err != nil {
		a.Close()
		return nil, err
	}

	pipeline, err := postprocessors.DefaultPipeline(settings.Chunking)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, PromptsSubdir))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	var chain driven.RetrievalChain
	if a.ai.LLMService != nil {
		chain, err = services.NewRetrievalChain(settings.LLM.Chain, a.ai.LLMService, prompts, services.ChainOptions{
			Temperature: settings.LLM.Temperature,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Ingestor = services.NewIngestService(normaliser, pipeline, a.ai.EmbeddingService, a.store, services.IngestConfig{
		BatchSize:         settings.Embedding.BatchSize,
		RequestsPerSecond: settings.Embedding.RequestsPerSecond,
	})
	a.Answerer = services.NewAnswerService(a.ai.EmbeddingService, a.store, chain, services.AnswerConfig{
		K:             settings.Retrieval.K,
		MinSimilarity: settings.Retrieval.MinSimilarity,
		Timeout:       time.Duration(settings.LLM.TimeoutSeconds) * time.Second,
	})
	a.Session = services.NewSessionService(a.Ingestor, a.Answerer)

	if ctx.Err() != nil {
		a.Close()
		return nil, ctx.Err()
	}
	return a, nil
}

func newNormaliser(usePdftotext bool) (driven.Normaliser, error) {
	if !usePdftotext {
		return pdf.New(), nil
	}
	n, err := pdf.NewPdftotext()
	if err != nil {
		return nil, fmt.Errorf("%w\n%s", err, pdf.InstallInstructions())
	}
	return n, nil
}

// Close releases the vector store and AI clients.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.ai != nil {
		a.ai.Close()
		a.ai = nil
	}
	return err
}
