package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, found := c.Get(ctx, "get:missing")
	assert.False(t, found)

	assert.NoError(t, c.Set(ctx, "get:go-expert", `{"text":"hi"}`, time.Minute))

	val, found := c.Get(ctx, "get:go-expert")
	assert.True(t, found)
	assert.Equal(t, `{"text":"hi"}`, val)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "short", "v", 30*time.Millisecond))

	_, found := c.Get(ctx, "short")
	assert.True(t, found)

	time.Sleep(60 * time.Millisecond)

	_, found = c.Get(ctx, "short")
	assert.False(t, found, "entry must expire after its TTL")
}
