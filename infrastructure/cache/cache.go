// Package cache stores formatted translation results keyed by request digest.
// Stores only ever see cache keys and rendered output, never the user's text.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helixml/plainspeak/internal/database"
)

// DefaultTTL is how long a result stays cached when no TTL is configured.
const DefaultTTL = 1800 * time.Second

// ErrUnsupportedScheme indicates the cache URL names an unknown backend.
var ErrUnsupportedScheme = errors.New("unsupported cache url scheme")

// Store is a key/value cache with per-entry expiry. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl. A non-positive ttl uses the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Name identifies the backend, e.g. "memory".
	Name() string

	// Close releases backend resources.
	Close() error
}

// Backend names.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDatabase = "database"
	BackendNone     = "none"
)

// Open selects a Store by URL scheme:
//   - memory:// in-process TTL cache
//   - redis://, rediss:// shared Redis cache
//   - sqlite:///path, postgres:// table in a SQL database
//   - none:// or "" caching disabled
func Open(ctx context.Context, url string, defaultTTL time.Duration, logger *slog.Logger) (Store, error) {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	switch {
	case url == "", strings.HasPrefix(url, "none://"):
		return NewNone(), nil
	case strings.HasPrefix(url, "memory://"):
		return NewMemory(defaultTTL), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		store, err := NewRedis(ctx, url, defaultTTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case database.IsDatabaseURL(url):
		db, err := database.Open(ctx, url, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewDatabaseStore(ctx, db, defaultTTL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme(url))
	}
}

func scheme(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i]
	}
	return "(none)"
}

func effectiveTTL(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return fallback
}
