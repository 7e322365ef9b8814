// Command docqa answers questions about a PDF.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/app"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

func main() {
	cli.SetFactories(openSettings, buildServices)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func openSettings(configDir string) (driving.SettingsService, error) {
	svc, err := app.NewSettingsService(configDir)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func buildServices(ctx context.Context, opts cli.BuildOptions, settings driving.SettingsService) (*cli.Services, error) {
	a, err := app.Build(ctx, app.Options{ConfigDir: opts.ConfigDir, Pdftotext: opts.Pdftotext}, settings)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Ingestor: a.Ingestor,
		Answerer: a.Answerer,
		Session:  a.Session,
		Warnings: a.Warnings,
		Close:    a.Close,
	}, nil
}
