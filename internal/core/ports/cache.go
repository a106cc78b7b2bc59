// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository defines the interface for cache operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value any) error
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)

	// GetOrSet reads key into dest, or on a miss calls fetch, caches the
	// result for ttl and fills dest from it.
	GetOrSet(ctx context.Context, key string, dest any,
		fetch func() (any, error), ttl time.Duration) error

	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Ping(ctx context.Context) error
}
