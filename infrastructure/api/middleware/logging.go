// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Logging writes one record per request once the response is complete.
// Bodies and query strings are never logged; 5xx responses log at WARN and
// 429s are tagged so throttled clients are easy to find.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				attrs := []slog.Attr{
					slog.String("correlation_id", GetCorrelationID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", status),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Int64("request_bytes", r.ContentLength),
					slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				}
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					attrs = append(attrs, slog.String("route", rctx.RoutePattern()))
				}
				if status == http.StatusTooManyRequests {
					attrs = append(attrs, slog.Bool("throttled", true))
				}

				level := slog.LevelInfo
				if status >= http.StatusInternalServerError {
					level = slog.LevelWarn
				}
				logger.LogAttrs(r.Context(), level, "request completed", attrs...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
