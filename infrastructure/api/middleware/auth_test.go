package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWriteProtect(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		method string
		key    string
		want   int
	}{
		{"get open", []string{"secret"}, http.MethodGet, "", http.StatusOK},
		{"head open", []string{"secret"}, http.MethodHead, "", http.StatusOK},
		{"preflight open", []string{"secret"}, http.MethodOptions, "", http.StatusOK},
		{"post without key", []string{"secret"}, http.MethodPost, "", http.StatusUnauthorized},
		{"post wrong key", []string{"secret"}, http.MethodPost, "wrong", http.StatusUnauthorized},
		{"post valid key", []string{"secret"}, http.MethodPost, "secret", http.StatusOK},
		{"second key accepted", []string{"a", "secret"}, http.MethodPost, "secret", http.StatusOK},
		{"put without key", []string{"secret"}, http.MethodPut, "", http.StatusUnauthorized},
		{"delete valid key", []string{"secret"}, http.MethodDelete, "secret", http.StatusOK},
		{"disabled", nil, http.MethodPost, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := WriteProtect(NewAuthConfigWithKeys(tt.keys))(okHandler())

			req := httptest.NewRequest(tt.method, "/api/v1/translate", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestWriteProtect_RejectionBody(t *testing.T) {
	handler := WriteProtect(NewAuthConfigWithKeys([]string{"secret"}))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Invalid or missing API key.", body.Error)
}

func TestAuthConfig_IgnoresBlankKeys(t *testing.T) {
	config := NewAuthConfigWithKeys([]string{"", "  "})
	assert.False(t, config.Enabled())
	assert.False(t, config.Valid(""))
}

func TestAuthConfig_TrimsKeys(t *testing.T) {
	config := NewAuthConfigWithKeys([]string{" secret "})
	assert.True(t, config.Valid("secret"))
	assert.False(t, config.Valid(" secret "))
}
