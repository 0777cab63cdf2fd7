package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/helixml/plainspeak/internal/log"
)

func captureIDs(seen *string, seenRequest *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = GetCorrelationID(r.Context())
		*seenRequest = log.RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestCorrelationID_UsesCallerHeader(t *testing.T) {
	var seen, seenRequest string
	handler := CorrelationID(captureIDs(&seen, &seenRequest))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationID_FallsBackToRequestID(t *testing.T) {
	var seen, seenRequest string
	handler := chimiddleware.RequestID(CorrelationID(captureIDs(&seen, &seenRequest)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seenRequest, seen)
	assert.Equal(t, seen, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationID_GeneratesUUID(t *testing.T) {
	var seen, seenRequest string
	handler := CorrelationID(captureIDs(&seen, &seenRequest))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Empty(t, seenRequest)
}

func TestCorrelationID_RejectsOversizedHeader(t *testing.T) {
	var seen, seenRequest string
	handler := CorrelationID(captureIDs(&seen, &seenRequest))

	long := strings.Repeat("x", 129)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, long)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.NotEqual(t, long, seen)
	assert.NotEmpty(t, seen)
}
