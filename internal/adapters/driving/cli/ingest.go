package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	ingestWatch    bool
	ingestDebounce time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf>",
	Short: "Index a PDF for questions",
	Long: `Extract the text of a PDF, split it into chunks, embed them and store
them in the vector store, replacing the previously ingested document.

With --watch, docqa keeps running and re-ingests the file whenever it is
saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when the file changes")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", filesystem.DefaultDebounce, "wait for writes to settle before re-ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	if err := ingestOnce(cmd, path); err != nil {
		return err
	}
	if !ingestWatch {
		return nil
	}
	return watchAndIngest(cmd, path)
}

func ingestOnce(cmd *cobra.Command, path string) error {
	cmd.Printf("Processing %s...\n", path)
	report, err := ingestService.Ingest(cmd.Context(), path)
	if err != nil {
		cmd.PrintErrln(describeError(err))
		return fmt.Errorf("ingest failed: %w", err)
	}
	printIngestReport(cmd, report)
	return nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("%s Document processed successfully\n", successLabel("✓"))
	cmd.Printf("  File:      %s\n", report.FileName)
	cmd.Printf("  Chunks:    %d\n", report.Chunks)
	cmd.Printf("  Embedding: %s\n", report.EmbeddingModel)
	cmd.Printf("  Took:      %s\n", report.Duration.Round(time.Millisecond))
}

func watchAndIngest(cmd *cobra.Command, path string) error {
	watcher, err := filesystem.New(path, ingestDebounce)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", watcher.Path())
	for change := range changes {
		switch change.Type {
		case filesystem.ChangeDeleted:
			cmd.Printf("%s %s was removed; keeping the last ingested version\n", warnLabel("!"), path)
		case filesystem.ChangeUpdated:
			// A failed re-ingest leaves the watcher running.
			if err := ingestOnce(cmd, path); err != nil {
				cmd.PrintErrln(err)
			}
		}
	}
	return nil
}
