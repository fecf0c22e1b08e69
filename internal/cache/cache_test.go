package cache

import (
	"context"
	"linkhub/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCache(t *testing.T) {
	c := NewLocalCache(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "abc")
	assert.False(t, ok)

	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	link := &model.Link{ID: 3, ShortName: "abc", OriginalURL: "https://example.com", ExpiresAt: &expires}
	c.Set(ctx, "abc", EntryFromLink(link))

	got, ok := c.Get(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, uint(3), got.ID)
	assert.Equal(t, "https://example.com", got.OriginalURL)
	assert.True(t, got.Expired(expires.Add(time.Second)))
	assert.False(t, got.Expired(expires.Add(-time.Second)))

	c.Delete(ctx, "abc")
	_, ok = c.Get(ctx, "abc")
	assert.False(t, ok)
}

func TestLocalCache_TTL(t *testing.T) {
	c := NewLocalCache(20 * time.Millisecond)
	c.Set(context.Background(), "short", Entry{ID: 1})

	assert.Eventually(t, func() bool {
		_, ok := c.Get(context.Background(), "short")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
