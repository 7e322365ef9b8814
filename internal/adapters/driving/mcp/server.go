package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/logger"
)

const (
	serverName     = "docqa"
	defaultVersion = "dev"

	shutdownGrace = 5 * time.Second
)

// Server exposes the session as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// Option configures a Server.
type Option func(*mcp.Implementation)

// WithVersion sets the version reported to clients during initialisation.
func WithVersion(v string) Option {
	return func(impl *mcp.Implementation) {
		if v != "" {
			impl.Version = v
		}
	}
}

// NewServer validates ports and registers the docqa tools and resources.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{Name: serverName, Version: defaultVersion}
	for _, opt := range opts {
		opt(impl)
	}

	s := &Server{ports: ports, server: mcp.NewServer(impl, nil)}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve blocks until ctx is done. With an empty addr it speaks JSON-RPC
// over stdio; otherwise it serves streamable HTTP on addr.
func (s *Server) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return s.server.Run(ctx, &mcp.StdioTransport{})
	}
	return s.serveHTTP(ctx, addr)
}

// Handler returns the streamable HTTP handler, for mounting under another
// mux.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
