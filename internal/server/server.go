// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the conversion engine over HTTP.
//
// Routes:
//
//	GET  /health   liveness probe
//	POST /convert  multipart upload (field "file") converted to Markdown
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const shutdownTimeout = 30 * time.Second

// Converter turns PDF bytes into a conversion result. *convert.Engine
// satisfies it.
type Converter interface {
	Convert(data []byte, opts convert.Options) (*types.ConversionResult, error)
}

// Server serves the conversion API.
type Server struct {
	cfg    types.ServerConfig
	conv   Converter
	logger *slog.Logger
}

// New returns a Server. Zero-valued settings in cfg take their defaults.
func New(cfg types.ServerConfig, conv Converter, logger *slog.Logger) *Server {
	def := types.DefaultServerConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, conv: conv, logger: logger}
}

// Handler returns the routed handler wrapped in the middleware chain:
// recovery, CORS, auth, request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /convert", s.handleConvert)

	var h http.Handler = mux
	h = logMiddleware(s.logger, h)
	h = authMiddleware(s.logger, s.cfg.APIKey, h)
	h = corsMiddleware(s.cfg.CORSOrigins, h)
	h = recoveryMiddleware(s.logger, h)
	return h
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
