package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v1"))
	got, ok := m.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v1", got)

	require.NoError(t, m.Set(ctx, "k", "v2"))
	got, _ = m.Get(ctx, "k")
	assert.Equal(t, "v2", got)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return clock }

	require.NoError(t, m.Set(ctx, "k", "v"))

	clock = clock.Add(59 * time.Second)
	_, ok := m.Get(ctx, "k")
	assert.True(t, ok)

	clock = clock.Add(time.Second)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestMemorySetSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return clock }

	for i := 0; i < 1000; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("key-%d", i), "v"))
	}
	assert.Equal(t, 1000, m.Len())

	clock = clock.Add(time.Hour)
	require.NoError(t, m.Set(ctx, "fresh", "v"))
	assert.Equal(t, 1, m.Len())
}

func TestMemorySweepKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return clock }

	require.NoError(t, m.Set(ctx, "a", "1"))
	clock = clock.Add(30 * time.Second)
	require.NoError(t, m.Set(ctx, "b", "2"))
	assert.Equal(t, 2, m.Len())

	clock = clock.Add(40 * time.Second)
	require.NoError(t, m.Set(ctx, "c", "3"))
	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)
	got, ok := m.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, "2", got)
}

func TestKey(t *testing.T) {
	a := Key("/api/recommendations", []byte(`{"profile":{}}`))
	b := Key("/api/recommendations", []byte(`{"profile":{}}`))
	c := Key("/api/recommendations", []byte(`{"profile":{"salary":1}}`))
	d := Key("/api/calculate-monthly-cost", []byte(`{"profile":{}}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Contains(t, a, "/api/recommendations:")
}

func TestNew(t *testing.T) {
	c, err := New(Options{Backend: BackendMemory, TTL: time.Second}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New(Options{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(Options{Backend: BackendRedis}, nil)
	assert.Error(t, err)

	_, err = New(Options{Backend: "memcached"}, nil)
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	r := NewRedis(addr, os.Getenv("REDIS_PASSWORD"), 0, 5*time.Second)
	defer r.Close()
	require.NoError(t, r.Ping(ctx))

	key := Key("/test", []byte(time.Now().String()))
	_, ok := r.Get(ctx, key)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, key, `{"ok":true}`))
	got, ok := r.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, `{"ok":true}`, got)
}
