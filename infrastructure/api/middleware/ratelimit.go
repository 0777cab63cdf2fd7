package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/ratelimit"
)

// Rate limit response headers.
const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RetryAfterHeader         = "Retry-After"
)

// RateLimit throttles requests per client, keyed as ClientKey describes.
// Rejected requests get 429 with a Retry-After header in whole seconds.
func RateLimit(limiter *ratelimit.Limiter, auth AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			d := limiter.Allow(ClientKey(r, auth))
			w.Header().Set(RateLimitLimitHeader, strconv.Itoa(d.Limit))
			w.Header().Set(RateLimitRemainingHeader, strconv.Itoa(d.Remaining))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set(RetryAfterHeader, strconv.Itoa(secs))
				WriteError(w, r, translation.ErrRateLimited, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller for rate limiting. A request carrying a key
// that auth accepts is keyed by that key, hashed so it never sits in the
// client table. Everything else, including unchecked or rejected keys, is
// keyed by remote IP.
func ClientKey(r *http.Request, auth AuthConfig) string {
	if key := r.Header.Get(APIKeyHeader); auth.Enabled() && auth.Valid(key) {
		sum := sha256.Sum256([]byte(key))
		return "key:" + hex.EncodeToString(sum[:8])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
