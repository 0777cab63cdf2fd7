package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-KEY"

// AuthConfig holds the accepted API keys. An empty set disables authentication.
type AuthConfig struct {
	keys []string
}

// NewAuthConfigWithKeys creates an AuthConfig. Blank keys are ignored.
func NewAuthConfigWithKeys(keys []string) AuthConfig {
	accepted := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			accepted = append(accepted, k)
		}
	}
	return AuthConfig{keys: accepted}
}

// Enabled reports whether any key is configured.
func (c AuthConfig) Enabled() bool {
	return len(c.keys) > 0
}

// Valid reports whether key matches a configured key.
func (c AuthConfig) Valid(key string) bool {
	if key == "" {
		return false
	}
	for _, k := range c.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// WriteProtect requires a valid X-API-KEY on requests that can spend
// completion quota. Reads and CORS preflight are never challenged.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !config.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) || config.Valid(r.Header.Get(APIKeyHeader)) {
				next.ServeHTTP(w, r)
				return
			}
			WriteError(w, r, NewAuthenticationError("invalid or missing api key"), nil)
		})
	}
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
