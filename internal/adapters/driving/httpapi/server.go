// Package httpapi serves the upload and question workflow over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ErrMissingSession is returned when the session is not provided.
var ErrMissingSession = errors.New("httpapi: session is required")

// Config configures the HTTP server.
type Config struct {
	// Host is the interface to bind, e.g. "127.0.0.1".
	Host string

	// Port is the TCP port. Zero picks a free port.
	Port int

	// UploadDir receives uploaded PDFs before they are ingested.
	UploadDir string

	// MaxUploadBytes caps the request body of an upload.
	MaxUploadBytes int64
}

// DefaultMaxUploadBytes is the upload limit when none is configured.
const DefaultMaxUploadBytes = 50 << 20

// Server exposes a driving.Session over HTTP.
type Server struct {
	mu       sync.Mutex
	cfg      Config
	session  driving.Session
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates an HTTP server for session.
func NewServer(session driving.Session, cfg Config) (*Server, error) {
	if session == nil {
		return nil, ErrMissingSession
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{
		cfg:     cfg,
		session: session,
		errChan: make(chan error, 1),
	}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/ask", s.handleAsk)
	mux.HandleFunc("GET /api/result", s.handleResult)
	return mux
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Store the actual port (important when port was 0)
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.cfg.Port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("HTTP API listening on %s", s.URL())
	return nil
}

// Run starts the server and blocks until ctx is cancelled or serving fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-s.errChan:
		return err
	}
}

// Stop shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Port
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)))
}
