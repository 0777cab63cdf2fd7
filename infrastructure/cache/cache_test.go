package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	defer func() { _ = m.Close() }()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("<section>cached</section>")
	require.NoError(t, m.Set(ctx, "k", value, 0))
	value[0] = 'X'

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<section>cached</section>", string(got), "stored value must be a copy")
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	require.NoError(t, m.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := m.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNone(t *testing.T) {
	ctx := context.Background()
	n := NewNone()
	require.NoError(t, n.Set(ctx, "k", []byte("v"), time.Minute))

	_, ok, err := n.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, BackendNone, n.Name())
}

func openSQLiteStore(t *testing.T) *DatabaseStore {
	t.Helper()
	url := "sqlite:///" + filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(context.Background(), url, time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ds, ok := store.(*DatabaseStore)
	require.True(t, ok, "expected *DatabaseStore, got %T", store)
	return ds
}

func TestDatabaseStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)
	assert.Equal(t, BackendDatabase, s.Name())

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("first"), 0))
	require.NoError(t, s.Set(ctx, "k", []byte("second"), 0))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(got))
}

func TestDatabaseStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := openSQLiteStore(t)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(30 * time.Second)
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	purged, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestOpen_Schemes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		url  string
		want string
	}{
		{"", BackendNone},
		{"none://", BackendNone},
		{"memory://", BackendMemory},
	}
	for _, tt := range tests {
		store, err := Open(ctx, tt.url, 0, nil)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, store.Name(), tt.url)
		_ = store.Close()
	}
}

func TestOpen_Unsupported(t *testing.T) {
	_, err := Open(context.Background(), "memcached://localhost:11211", 0, nil)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestOpen_RedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Open(ctx, "redis://127.0.0.1:1/0", 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func TestOpen_RedisBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "redis://localhost:6379/notadb", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}
