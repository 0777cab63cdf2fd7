package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/infrastructure/api"
	"github.com/helixml/plainspeak/internal/clientopts"
	"github.com/helixml/plainspeak/internal/config"
	"github.com/helixml/plainspeak/internal/log"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  API_KEYS                     Comma-separated list of valid API keys
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins (default: *)
  REQUEST_TIMEOUT              Request timeout in seconds (default: 60)

  COMPLETION_*                 Completion service configuration
    PROVIDER                   openai, anthropic or gemini (default: openai)
    BASE_URL                   Base URL for OpenAI-compatible or Anthropic APIs
    MODEL                      Model identifier
    API_KEY                    API key for authentication
    API_STYLE                  chat or completions (default: chat)
    TIMEOUT                    Request timeout in seconds (default: 30)
    MAX_RETRIES                Retry attempts (default: 3)
    INITIAL_DELAY              First retry delay in seconds (default: 2)
    BACKOFF_FACTOR             Retry delay multiplier (default: 2)
    MAX_TOKENS                 Completion token limit (default: 300)
    TEMPERATURE                Sampling temperature (default: 0.7)
    FREQUENCY_PENALTY          Frequency penalty (default: 0.5)

  OCR_*                        Image text extraction
    ENGINE                     auto, tesseract, gemini or none (default: auto)
    LANGUAGES                  Tesseract languages (default: eng)
    MAX_IMAGE_BYTES            Upload limit (default: 5242880)
    API_KEY, MODEL             Gemini vision credentials

  CACHE_URL                    memory://, redis://, sqlite:///path, postgres://... or none://
  CACHE_TTL                    Result lifetime in seconds (default: 1800)
  CACHE_PURGE_INTERVAL         Seconds between expired-row purges for database caches (default: 600)

  RATE_LIMIT_*                 Per-client throttling
    ENABLED                    Enable rate limiting (default: true)
    REQUESTS                   Requests per window (default: 10)
    WINDOW                     Window in seconds (default: 60)
    MAX_CLIENTS                Tracked clients (default: 10000)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Flags take precedence over env vars.
	cfg = applyServeOverrides(cfg, host, port)

	slogger := log.Configure(cfg)

	opts, err := clientopts.Options(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, plainspeak.WithLogger(slogger))
	if keys := cfg.APIKeys(); len(keys) > 0 {
		opts = append(opts, plainspeak.WithAPIKeys(keys...))
	}

	limiter, err := clientopts.RateLimiter(cfg.RateLimit())
	if err != nil {
		return err
	}

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(ctx, slog.LevelInfo, "starting plainspeak", attrs...)

	client, err := plainspeak.New(opts...)
	if err != nil {
		return fmt.Errorf("create plainspeak client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close plainspeak client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client,
		api.WithCORSAllowedOrigins(cfg.CORSAllowedOrigins()...),
		api.WithRateLimiter(limiter),
		api.WithRequestTimeout(cfg.RequestTimeout()),
	)
	router := apiServer.Router()
	apiServer.MountRoutes()

	server := api.NewServer(cfg.Addr(), slogger, cfg.RequestTimeout())
	server.Router().Mount("/", router)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
