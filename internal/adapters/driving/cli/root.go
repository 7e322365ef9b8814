// Package cli implements the docqa command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	pdftotext bool
)

// Services used by the commands. Tests assign them directly.
var (
	settingsService driving.SettingsService
	ingestService   driving.Ingestor
	answerService   driving.AnswerEngine
	sessionService  driving.Session
)

// Services is what BuildFunc returns.
type Services struct {
	Ingestor driving.Ingestor
	Answerer driving.AnswerEngine
	Session  driving.Session

	// Warnings are printed before the command runs.
	Warnings []string

	// Close releases the services. May be nil.
	Close func() error
}

// BuildOptions carries the global flags that affect service construction.
type BuildOptions struct {
	ConfigDir string
	Pdftotext bool
}

// SettingsFunc opens the settings service for a config directory.
type SettingsFunc func(configDir string) (driving.SettingsService, error)

// BuildFunc builds the ingest and answer services.
type BuildFunc func(ctx context.Context, opts BuildOptions, settings driving.SettingsService) (*Services, error)

var (
	newSettings   SettingsFunc
	buildServices BuildFunc
	closeServices func() error
)

// SetFactories registers the constructors used to build services lazily.
// Settings commands only open the config; ingest and ask build everything.
func SetFactories(settings SettingsFunc, build BuildFunc) {
	newSettings = settings
	buildServices = build
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about a PDF",
	Long: `docqa indexes a PDF into a local vector store and answers questions
about it with a language model, showing the chunks each answer is based on.

Quick start:
  docqa ingest report.pdf
  docqa ask "What are the key findings?"

Run 'docqa tui' for the interactive interface, 'docqa serve' for the HTTP
API or 'docqa mcp serve' to expose the document to AI assistants.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show pipeline progress on stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docqa)")
	rootCmd.PersistentFlags().BoolVar(&pdftotext, "pdftotext", false, "extract PDF text with poppler's pdftotext")
}

func preRun(_ *cobra.Command, _ []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	logger.SetVerbose(verbose)

	if settingsService == nil && newSettings != nil {
		svc, err := newSettings(configDir)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		settingsService = svc
	}
	return nil
}

// ensureServices builds the ingest and answer services on first use.
func ensureServices(cmd *cobra.Command) error {
	if sessionService != nil {
		return nil
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if buildServices == nil {
		return errors.New("session service not configured")
	}

	svc, err := buildServices(cmd.Context(), BuildOptions{ConfigDir: configDir, Pdftotext: pdftotext}, settingsService)
	if err != nil {
		return err
	}
	for _, w := range svc.Warnings {
		cmd.PrintErrf("%s %s\n", warnLabel("Warning:"), w)
	}

	ingestService = svc.Ingestor
	answerService = svc.Answerer
	sessionService = svc.Session
	closeServices = svc.Close
	return nil
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and releases any services
// built along the way.
func ExecuteContext(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("closing services: %v", err)
			}
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
