package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/plainspeak/infrastructure/api/middleware"
)

// writeTimeoutSlack is added to the request timeout so a handler that hits
// its deadline still has time to write the 503.
const writeTimeoutSlack = 5 * time.Second

// Server owns the HTTP listener and the root router. Routes are added to
// Router() before Start or Serve.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server listening on addr. requestTimeout is the longest
// a translation may run; zero uses DefaultRequestTimeout.
func NewServer(addr string, logger *slog.Logger, requestTimeout time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	router := chi.NewRouter()

	// Request timeouts and rate limits are applied per route group so health
	// checks are never throttled.
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.CorrelationID)
	router.Use(middleware.Logging(logger))
	router.Use(chimiddleware.Recoverer)

	return &Server{
		router: router,
		logger: logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      requestTimeout + writeTimeoutSlack,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Router returns the root router.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and blocks until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", slog.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// It is safe to call before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// WriteTimeout returns the response write deadline.
func (s *Server) WriteTimeout() time.Duration {
	return s.httpServer.WriteTimeout
}
