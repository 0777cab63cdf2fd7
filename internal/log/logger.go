// Package log builds the slog loggers used across plainspeak. Every logger it
// returns redacts attributes that could carry user text or credentials and
// picks up correlation and request IDs from the context.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/helixml/plainspeak/internal/config"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for logging.
const (
	CorrelationIDKey ContextKey = "correlation_id"
	RequestIDKey     ContextKey = "request_id"
)

// New returns a logger that writes to w. Any format other than JSON gets the
// coloured terminal layout.
func New(w io.Writer, format config.LogFormat, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level), ReplaceAttr: redactAttr}

	var h slog.Handler
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = newTerminalHandler(w, opts)
	}
	return slog.New(contextHandler{h})
}

// Configure builds the stdout logger described by cfg and installs it as the
// slog default.
func Configure(cfg config.AppConfig) *slog.Logger {
	l := New(os.Stdout, cfg.LogFormat(), cfg.LogLevel())
	slog.SetDefault(l)
	return l
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// CorrelationID extracts the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CorrelationIDKey).(string)
	return id
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
