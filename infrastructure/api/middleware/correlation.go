package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/helixml/plainspeak/internal/log"
)

// CorrelationIDHeader carries the correlation ID in requests and responses.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID stores a correlation ID and the chi request ID in the request
// context and echoes the correlation ID back. The caller's header wins, then
// the request ID, then a fresh UUID.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := middleware.GetReqID(ctx)

		id := r.Header.Get(CorrelationIDHeader)
		if id == "" || len(id) > 128 {
			id = requestID
		}
		if id == "" {
			id = uuid.NewString()
		}

		ctx = log.WithCorrelationID(ctx, id)
		if requestID != "" {
			ctx = log.WithRequestID(ctx, requestID)
		}

		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID returns the correlation ID stored by CorrelationID.
func GetCorrelationID(ctx context.Context) string {
	return log.CorrelationID(ctx)
}
