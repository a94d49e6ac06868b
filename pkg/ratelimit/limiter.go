package ratelimit

import "context"

// Limiter bounds how often the expensive generation path may run per logical
// caller key. Policy is a sliding window of Max permits per Window.
type Limiter interface {
	Consume(ctx context.Context, key string) (bool, error)
}
