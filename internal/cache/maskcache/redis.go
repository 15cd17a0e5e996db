package maskcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/aperture-engine/internal/cache"
	"github.com/mohammed-shakir/aperture-engine/internal/core/observability"
	"github.com/mohammed-shakir/aperture-engine/internal/raster"
)

const tierRedis = "redis"

// Redis stores masks in a shared backend in their binary form. Backend
// failures degrade to misses; they are logged and counted, never returned.
type Redis struct {
	backend cache.Backend
	ttl     time.Duration
	timeout time.Duration
	log     *slog.Logger
}

type RedisOption func(*Redis)

func WithTTL(d time.Duration) RedisOption { return func(r *Redis) { r.ttl = d } }

// WithOpTimeout bounds every backend round trip.
func WithOpTimeout(d time.Duration) RedisOption { return func(r *Redis) { r.timeout = d } }

func WithLogger(l *slog.Logger) RedisOption { return func(r *Redis) { r.log = l } }

func NewRedis(b cache.Backend, opts ...RedisOption) *Redis {
	r := &Redis{backend: b, ttl: time.Hour, timeout: 200 * time.Millisecond, log: slog.Default()}
	for _, f := range opts {
		f(r)
	}
	return r
}

// returns context with timeout if set
func (r *Redis) withTimeout() (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *Redis) Get(key string) (*raster.Mask, bool) {
	ctx, cancel := r.withTimeout()
	defer cancel()

	b, ok, err := r.backend.Get(ctx, key)
	if err != nil {
		observability.IncMaskCacheError(tierRedis, "get")
		r.log.Warn("mask cache get failed", "key", key, "err", err)
		return nil, false
	}
	if !ok {
		observability.IncMaskCacheMiss(tierRedis)
		return nil, false
	}
	m := new(raster.Mask)
	if err := m.UnmarshalBinary(b); err != nil {
		observability.IncMaskCacheError(tierRedis, "decode")
		r.log.Warn("mask cache entry corrupt", "key", key, "err", err)
		return nil, false
	}
	observability.IncMaskCacheHit(tierRedis)
	return m, true
}

func (r *Redis) Put(key string, m *raster.Mask) {
	if m == nil {
		return
	}
	b, err := m.MarshalBinary()
	if err != nil {
		observability.IncMaskCacheError(tierRedis, "encode")
		return
	}
	ctx, cancel := r.withTimeout()
	defer cancel()
	if err := r.backend.Set(ctx, key, b, r.ttl); err != nil {
		observability.IncMaskCacheError(tierRedis, "set")
		r.log.Warn("mask cache set failed", "key", key, "err", err)
	}
}
