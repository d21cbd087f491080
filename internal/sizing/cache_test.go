package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/transcript/internal/types"
)

func TestCacheRowHitAndClear(t *testing.T) {
	c := NewCache()
	c.Store(42, 1, types.ListPositionFirstOfMany, false)

	h, ok := c.Height(1, types.ListPositionFirstOfMany, false)
	assert.True(t, ok)
	assert.Equal(t, 42.0, h)

	// Position is part of the key.
	_, ok = c.Height(1, types.ListPositionLastOfMany, false)
	assert.False(t, ok)

	// Width changed: the owner clears.
	c.Clear()
	_, ok = c.Height(1, types.ListPositionFirstOfMany, false)
	assert.False(t, ok)
}

func TestCacheDetailsVisibleNeverCached(t *testing.T) {
	c := NewCache()
	c.Store(10, 1, types.ListPositionNone, true)
	assert.Equal(t, 0, c.Len())

	c.Store(10, 1, types.ListPositionNone, false)
	_, ok := c.Height(1, types.ListPositionNone, true)
	assert.False(t, ok, "rows showing details must miss")
}

func TestCacheHeadersAndTyping(t *testing.T) {
	c := NewCache()
	_, ok := c.TypingIndicatorHeight()
	assert.False(t, ok)

	c.StoreHeaderHeight(30, 1000)
	c.StoreTypingIndicatorHeight(44)

	h, ok := c.HeaderHeight(1000)
	assert.True(t, ok)
	assert.Equal(t, 30.0, h)
	h, ok = c.TypingIndicatorHeight()
	assert.True(t, ok)
	assert.Equal(t, 44.0, h)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	_, ok = c.HeaderHeight(1000)
	assert.False(t, ok)
	_, ok = c.TypingIndicatorHeight()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheForget(t *testing.T) {
	c := NewCache()
	c.Store(1, 7, types.ListPositionNone, false)
	c.Store(2, 7, types.ListPositionLastOfMany, false)
	c.Store(3, 8, types.ListPositionNone, false)

	c.Forget(7)
	_, ok := c.Height(7, types.ListPositionNone, false)
	assert.False(t, ok)
	_, ok = c.Height(8, types.ListPositionNone, false)
	assert.True(t, ok)
}
