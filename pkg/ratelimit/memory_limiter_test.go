package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterEnforcesWindow(t *testing.T) {
	l := NewMemoryLimiter(1, 100*time.Millisecond)
	ctx := context.Background()

	allowed, err := l.Consume(ctx, "intro.create")
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Consume(ctx, "intro.create")
	assert.NoError(t, err)
	assert.False(t, allowed, "second request inside the window must be rejected")

	time.Sleep(120 * time.Millisecond)

	allowed, err = l.Consume(ctx, "intro.create")
	assert.NoError(t, err)
	assert.True(t, allowed, "window expiry must release the permit")
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, _ := l.Consume(ctx, "intro.create:203.0.113.1")
	assert.True(t, allowed)

	allowed, _ = l.Consume(ctx, "intro.create:203.0.113.2")
	assert.True(t, allowed, "a different caller must not share the window")

	allowed, _ = l.Consume(ctx, "intro.create:203.0.113.1")
	assert.False(t, allowed)
}

func TestMemoryLimiterMultiplePermits(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Consume(ctx, "bulk")
		assert.True(t, allowed, "permit %d", i+1)
	}

	allowed, _ := l.Consume(ctx, "bulk")
	assert.False(t, allowed)
}
