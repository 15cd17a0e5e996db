// Package cache defines the byte store behind the shared mask tier.
package cache

import (
	"context"
	"time"
)

// Backend is implemented by redisstore.Client.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
