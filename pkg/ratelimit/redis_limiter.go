package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements a sliding window over a Redis sorted set: members
// are request timestamps, scored by nanosecond time, pruned to the window on
// every check. The check-then-add pair is not atomic across processes; the
// window is a cost cap, not a security boundary.
type RedisLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		max:    max,
		window: window,
	}
}

func (l *RedisLimiter) Consume(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-l.window).UnixNano()

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val() >= int64(l.max) {
		return false, nil
	}

	addPipe := l.rdb.TxPipeline()
	addPipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	addPipe.Expire(ctx, key, l.window)
	if _, err := addPipe.Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}
