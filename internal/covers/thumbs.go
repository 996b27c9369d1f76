package covers

import (
	"image"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mmcdole/shelf/internal/domain"
)

// DefaultThumbnailCapacity is the number of decoded covers kept in memory.
const DefaultThumbnailCapacity = 128

// ThumbnailCache is a bounded least-recently-used map of decoded covers.
type ThumbnailCache struct {
	capacity int
	entries  *lru.Cache[domain.CoverID, *image.RGBA]
}

// NewThumbnailCache creates a cache holding at most capacity thumbnails.
func NewThumbnailCache(capacity int) *ThumbnailCache {
	if capacity <= 0 {
		capacity = DefaultThumbnailCapacity
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[domain.CoverID, *image.RGBA](capacity)
	return &ThumbnailCache{capacity: capacity, entries: entries}
}

// Get returns the thumbnail for id and marks it most recently used.
func (c *ThumbnailCache) Get(id domain.CoverID) (*image.RGBA, bool) {
	return c.entries.Get(id)
}

// Peek returns the thumbnail without changing recency.
func (c *ThumbnailCache) Peek(id domain.CoverID) (*image.RGBA, bool) {
	return c.entries.Peek(id)
}

// Put inserts or replaces id, evicting the least recently used entry when
// the cache is full.
func (c *ThumbnailCache) Put(id domain.CoverID, img *image.RGBA) {
	c.entries.Add(id, img)
}

// Invalidate drops id.
func (c *ThumbnailCache) Invalidate(id domain.CoverID) {
	c.entries.Remove(id)
}

// Contains reports whether id is cached without changing recency.
func (c *ThumbnailCache) Contains(id domain.CoverID) bool {
	return c.entries.Contains(id)
}

// Len returns the number of cached thumbnails.
func (c *ThumbnailCache) Len() int { return c.entries.Len() }

// Capacity returns the configured bound.
func (c *ThumbnailCache) Capacity() int { return c.capacity }

// Keys returns ids from least to most recently used.
func (c *ThumbnailCache) Keys() []domain.CoverID { return c.entries.Keys() }

// Purge empties the cache.
func (c *ThumbnailCache) Purge() { c.entries.Purge() }
