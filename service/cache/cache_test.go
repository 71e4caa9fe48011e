package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atomhq/atom/internal/clock"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute, 0)
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k1", "v1")
	value, ok := c.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", value)

	c.Delete("k1")
	_, ok = c.Get("k1")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	now := time.Now()
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	c := New(time.Second, 0)
	defer c.Close()

	c.Set("short", 1)
	c.SetWithTTL("long", 2, time.Hour)
	c.SetWithTTL("forever", 3, 0)

	_, ok := c.Get("short")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)

	_, ok = c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)

	// lazy expiry removed the stale entry
	assert.Equal(t, 2, c.Len())
}
