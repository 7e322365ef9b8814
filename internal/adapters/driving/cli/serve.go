package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docqa/internal/core/services"
)

// Port range searched when --port is not given.
const (
	serveStartPort = 8420
	serveEndPort   = 8440
)

var (
	serveHost      string
	servePort      int
	serveUploadDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve a small HTTP API over the current session:

  POST /api/upload   multipart form with a "file" field holding the PDF
  POST /api/ask      {"question": "..."}
  GET  /api/result   the last answer
  GET  /healthz      liveness

Uploaded files are saved to --upload-dir before they are processed.
Without --port the first free port from 8420 is used.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "interface to listen on")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (0 = first free port from 8420)")
	serveCmd.Flags().StringVar(&serveUploadDir, "upload-dir", "", "where uploads are saved (default <config dir>/uploads)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	port := servePort
	if port == 0 {
		found, err := services.FindAvailablePort(serveHost, serveStartPort, serveEndPort)
		if err != nil {
			return err
		}
		port = found
	}

	uploadDir, err := resolveUploadDir()
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(sessionService, httpapi.Config{
		Host:      serveHost,
		Port:      port,
		UploadDir: uploadDir,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Serving on http://%s:%d (Ctrl+C to stop)\n", serveHost, port)
	return server.Run(cmd.Context())
}

func resolveUploadDir() (string, error) {
	if serveUploadDir != "" {
		return serveUploadDir, nil
	}
	dir := configDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve upload dir: %w", err)
		}
		dir = filepath.Join(home, ".docqa")
	}
	return filepath.Join(dir, "uploads"), nil
}
