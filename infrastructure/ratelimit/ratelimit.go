// Package ratelimit enforces per-client request quotas.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Defaults applied when a Config field is zero.
const (
	DefaultRequests   = 10
	DefaultWindow     = 60 * time.Second
	DefaultMaxClients = 10000
)

// Config describes a quota of Requests per Window for each client.
type Config struct {
	Requests   int
	Window     time.Duration
	MaxClients int
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter hands out one token bucket per client key. Buckets refill evenly
// across the window with a burst equal to the full quota. The client table is
// bounded; the least recently seen client is evicted first.
type Limiter struct {
	mu      sync.Mutex
	clients *lru.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// New creates a Limiter.
func New(cfg Config) (*Limiter, error) {
	if cfg.Requests <= 0 {
		cfg.Requests = DefaultRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultMaxClients
	}

	clients, err := lru.New[string, *rate.Limiter](cfg.MaxClients)
	if err != nil {
		return nil, fmt.Errorf("create client table: %w", err)
	}

	return &Limiter{
		clients: clients,
		limit:   rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:   cfg.Requests,
		now:     time.Now,
	}, nil
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.clients.Get(key)
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.clients.Add(key, bucket)
	}

	res := bucket.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return Decision{
			Allowed:    false,
			Limit:      l.burst,
			Remaining:  0,
			RetryAfter: delay,
		}
	}

	return Decision{
		Allowed:   true,
		Limit:     l.burst,
		Remaining: int(math.Max(0, math.Floor(bucket.TokensAt(now)))),
	}
}

// Clients returns the number of tracked clients.
func (l *Limiter) Clients() int {
	return l.clients.Len()
}
