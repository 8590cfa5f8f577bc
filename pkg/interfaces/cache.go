package interfaces

import (
	"context"
	"time"
)

// CacheProvider is the key/value cache contract used by decorators that
// memoize collaborator results. Callers treat any error or a nil value as a
// miss.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
