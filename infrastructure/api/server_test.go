package api

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewServer_Defaults(t *testing.T) {
	server := NewServer(":8080", nil, 0)

	assert.Equal(t, ":8080", server.Addr())
	assert.NotNil(t, server.Router())
	assert.Equal(t, DefaultRequestTimeout+writeTimeoutSlack, server.WriteTimeout())
}

func TestNewServer_WriteTimeoutFollowsRequestTimeout(t *testing.T) {
	server := NewServer(":0", discardLogger(), 90*time.Second)
	assert.Equal(t, 95*time.Second, server.WriteTimeout())
}

func TestServer_NotFound(t *testing.T) {
	server := NewServer(":0", discardLogger(), 0)

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	server := NewServer(":0", discardLogger(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
}

func TestServer_ServeAndShutdown(t *testing.T) {
	server := NewServer("127.0.0.1:0", discardLogger(), 0)
	server.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-done)
}

func TestServer_EchoesCorrelationID(t *testing.T) {
	server := NewServer(":0", discardLogger(), 0)
	server.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Correlation-ID", "trace-42")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, "trace-42", w.Header().Get("X-Correlation-ID"))
}

func TestServer_RecoversFromPanic(t *testing.T) {
	server := NewServer(":0", discardLogger(), 0)
	server.Router().Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
