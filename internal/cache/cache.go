// Package cache stores rendered API responses keyed by request path and body.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Cache is a string key/value store with entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Options select and configure a backend.
type Options struct {
	Backend  string
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// New builds the configured backend.
func New(opts Options, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemory(opts.TTL), nil
	case BackendRedis:
		if opts.Address == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		logger.Info("using redis response cache",
			zap.String("op", "cache.New"),
			zap.String("address", opts.Address),
			zap.Int("db", opts.DB),
		)
		return NewRedis(opts.Address, opts.Password, opts.DB, opts.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Key derives a cache key from the request path and body.
func Key(path string, body []byte) string {
	return path + ":" + strconv.FormatUint(xxhash.Sum64(body), 16)
}

type entry struct {
	value   string
	expires time.Time
}

// Memory is an in-process cache. A zero TTL keeps entries forever; otherwise
// Set sweeps expired entries at most once per TTL.
type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[string]entry
	now       func() time.Time
	nextSweep time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := entry{value: value}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
		if !now.Before(m.nextSweep) {
			m.sweep(now)
			m.nextSweep = now.Add(m.ttl)
		}
	}
	m.entries[key] = e
	return nil
}

// sweep drops expired entries. The caller holds m.mu.
func (m *Memory) sweep(now time.Time) {
	for key, e := range m.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.entries, key)
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Redis is a cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects lazily to the Redis server at addr.
func NewRedis(addr, password string, db int, ttl time.Duration) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: rdb, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
