package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose docqa to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ingest a
PDF and ask questions about it.

Tools:
  ingest_document - process a PDF by path
  ask_document    - answer a question from the processed PDF

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve over HTTP instead, e.g. for the MCP Inspector.

Examples:
  # Stdio mode (default, for desktop assistants)
  docqa mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docqa mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "docqa": {
        "command": "/path/to/docqa",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	if port < 0 || port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if err := ensureServices(cmd); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Session: sessionService}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	var addr string
	if port > 0 {
		addr = fmt.Sprintf("127.0.0.1:%d", port)
		cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	}
	return server.Serve(cmd.Context(), addr)
}
