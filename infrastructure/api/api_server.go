// Package api serves the translation HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/helixml/plainspeak"
	apimiddleware "github.com/helixml/plainspeak/infrastructure/api/middleware"
	v1 "github.com/helixml/plainspeak/infrastructure/api/v1"
	"github.com/helixml/plainspeak/infrastructure/api/v1/dto"
	"github.com/helixml/plainspeak/infrastructure/ratelimit"
)

// DefaultRequestTimeout bounds every translation and extraction request.
const DefaultRequestTimeout = 60 * time.Second

// APIServer provides an HTTP API backed by a plainspeak Client.
type APIServer struct {
	client         *plainspeak.Client
	apiKeys        []string
	corsOrigins    []string
	limiter        *ratelimit.Limiter
	requestTimeout time.Duration
	server         *Server
	router         chi.Router
	routerCalled   bool
	logger         *slog.Logger
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithCORSAllowedOrigins sets the origins allowed to call the API from a
// browser. The default allows any origin.
func WithCORSAllowedOrigins(origins ...string) APIServerOption {
	return func(a *APIServer) {
		if len(origins) > 0 {
			a.corsOrigins = append([]string(nil), origins...)
		}
	}
}

// WithRateLimiter throttles the translation and extraction endpoints.
func WithRateLimiter(l *ratelimit.Limiter) APIServerOption {
	return func(a *APIServer) {
		a.limiter = l
	}
}

// WithRequestTimeout bounds translation and extraction requests.
func WithRequestTimeout(d time.Duration) APIServerOption {
	return func(a *APIServer) {
		if d > 0 {
			a.requestTimeout = d
		}
	}
}

// NewAPIServer creates a new APIServer wired to the given Client. When the
// client carries API keys, POST endpoints require a valid X-API-KEY header.
// Health and capability endpoints remain open.
func NewAPIServer(client *plainspeak.Client, opts ...APIServerOption) *APIServer {
	a := &APIServer{
		client:         client,
		apiKeys:        client.APIKeys(),
		corsOrigins:    []string{"*"},
		requestTimeout: DefaultRequestTimeout,
		logger:         client.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	translateRouter := v1.NewTranslateRouter(c)
	extractRouter := v1.NewExtractRouter(c)
	capabilitiesRouter := v1.NewCapabilitiesRouter(c)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", apimiddleware.APIKeyHeader, apimiddleware.CorrelationIDHeader},
		ExposedHeaders: []string{
			apimiddleware.CorrelationIDHeader,
			apimiddleware.RateLimitLimitHeader,
			apimiddleware.RateLimitRemainingHeader,
			apimiddleware.RetryAfterHeader,
		},
		MaxAge: 300,
	}))

	router.Get("/health", a.health)
	router.Get("/healthz", a.health)

	auth := apimiddleware.NewAuthConfigWithKeys(a.apiKeys)

	// Mutating routes: bounded, throttled and write-protected.
	protected := func(r chi.Router) {
		r.Use(chimiddleware.Timeout(a.requestTimeout))
		r.Use(apimiddleware.RateLimit(a.limiter, auth))
		r.Use(apimiddleware.WriteProtect(auth))
	}

	router.Group(func(r chi.Router) {
		protected(r)
		r.Post("/", translateRouter.Translate)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Mount("/capabilities", capabilitiesRouter.Routes())

		r.Group(func(r chi.Router) {
			protected(r)
			r.Mount("/translate", translateRouter.Routes())
			r.Mount("/extract", extractRouter.Routes())
		})
	})
}

func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "healthy"})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger, a.requestTimeout)
	a.server = server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
