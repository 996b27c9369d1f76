package covers

import (
	"image"
	"testing"

	"github.com/mmcdole/shelf/internal/domain"
)

func thumb() *image.RGBA { return image.NewRGBA(image.Rect(0, 0, 1, 1)) }

func TestThumbnailCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewThumbnailCache(3)
	for _, id := range []domain.CoverID{1, 2, 3} {
		c.Put(id, thumb())
	}

	// Touch 1 so 2 becomes the oldest.
	if _, ok := c.Get(1); !ok {
		t.Fatal("expected hit for 1")
	}
	c.Put(4, thumb())

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if c.Contains(2) {
		t.Error("2 should have been evicted")
	}
	for _, id := range []domain.CoverID{1, 3, 4} {
		if !c.Contains(id) {
			t.Errorf("%d should still be cached", id)
		}
	}
	want := []domain.CoverID{3, 1, 4}
	keys := c.Keys()
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys = %v, want %v", keys, want)
		}
	}
}

func TestThumbnailCachePeekDoesNotPromote(t *testing.T) {
	c := NewThumbnailCache(2)
	c.Put(1, thumb())
	c.Put(2, thumb())
	if _, ok := c.Peek(1); !ok {
		t.Fatal("expected peek hit")
	}
	c.Put(3, thumb())
	if c.Contains(1) {
		t.Error("Peek promoted 1")
	}
}

func TestThumbnailCacheInvalidateAndDefaults(t *testing.T) {
	c := NewThumbnailCache(0)
	if c.Capacity() != DefaultThumbnailCapacity {
		t.Errorf("Capacity = %d, want default", c.Capacity())
	}
	c.Put(5, thumb())
	c.Invalidate(5)
	if _, ok := c.Get(5); ok {
		t.Error("5 still cached after Invalidate")
	}
	c.Put(6, thumb())
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d", c.Len())
	}
}
