// Package sizing memoizes rendered row heights and holds the per-kind
// measurement strategies used on a cache miss.
package sizing

import "github.com/user/transcript/internal/types"

type rowKey struct {
	seq int64
	pos types.ListPosition
}

// Cache memoizes row, header and typing-indicator heights. It holds no width
// state: the owner must Clear it whenever the available width changes.
type Cache struct {
	rows    map[rowKey]float64
	headers map[int64]float64
	typing  *float64
}

func NewCache() *Cache {
	return &Cache{
		rows:    make(map[rowKey]float64),
		headers: make(map[int64]float64),
	}
}

// Height looks up the height of a row. Rows showing their details are never
// served from the cache.
func (c *Cache) Height(seq int64, pos types.ListPosition, detailsVisible bool) (float64, bool) {
	if detailsVisible {
		return 0, false
	}
	h, ok := c.rows[rowKey{seq: seq, pos: pos}]
	return h, ok
}

// Store records a row height. Heights measured with details visible are
// dropped.
func (c *Cache) Store(h float64, seq int64, pos types.ListPosition, detailsVisible bool) {
	if detailsVisible {
		return
	}
	c.rows[rowKey{seq: seq, pos: pos}] = h
}

// Forget drops every cached height for seq.
func (c *Cache) Forget(seq int64) {
	for k := range c.rows {
		if k.seq == seq {
			delete(c.rows, k)
		}
	}
}

func (c *Cache) HeaderHeight(ts int64) (float64, bool) {
	h, ok := c.headers[ts]
	return h, ok
}

func (c *Cache) StoreHeaderHeight(h float64, ts int64) {
	c.headers[ts] = h
}

func (c *Cache) TypingIndicatorHeight() (float64, bool) {
	if c.typing == nil {
		return 0, false
	}
	return *c.typing, true
}

func (c *Cache) StoreTypingIndicatorHeight(h float64) {
	c.typing = &h
}

// Clear wipes rows, headers and the typing slot.
func (c *Cache) Clear() {
	clear(c.rows)
	clear(c.headers)
	c.typing = nil
}

// Len is the number of cached row and header entries.
func (c *Cache) Len() int {
	n := len(c.rows) + len(c.headers)
	if c.typing != nil {
		n++
	}
	return n
}
