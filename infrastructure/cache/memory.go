package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store backed by go-cache. Entries do not survive a
// restart and are not shared between replicas.
type Memory struct {
	items      *gocache.Cache
	defaultTTL time.Duration
}

// NewMemory creates an in-memory store. Expired entries are swept every
// defaultTTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	defaultTTL = effectiveTTL(defaultTTL, DefaultTTL)
	return &Memory{
		items:      gocache.New(defaultTTL, defaultTTL),
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached value for key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		m.items.Delete(key)
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b := make([]byte, len(value))
	copy(b, value)
	m.items.Set(key, b, effectiveTTL(ttl, m.defaultTTL))
	return nil
}

// Len returns the number of entries, including expired ones not yet swept.
func (m *Memory) Len() int { return m.items.ItemCount() }

// Name returns "memory".
func (m *Memory) Name() string { return BackendMemory }

// Close empties the cache.
func (m *Memory) Close() error {
	m.items.Flush()
	return nil
}

var _ Store = (*Memory)(nil)
