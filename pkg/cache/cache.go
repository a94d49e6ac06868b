package cache

import (
	"context"
	"time"
)

// Cache is the fast key-value layer in front of the durable store. It is a
// pure performance optimization: a miss (or an unavailable backend) must only
// cost latency, never correctness. Values are JSON strings; callers validate
// them and treat anything invalid as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
