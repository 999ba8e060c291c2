package export

import (
	"container/heap"
	"context"
	"image"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// ImageCacheStats reports cache effectiveness
type ImageCacheStats struct {
	Entries   int     `json:"entries"`
	Bytes     int64   `json:"bytes"`
	MaxBytes  int64   `json:"maxBytes"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
}

// CachingImageLoader keeps decoded backgrounds in memory. Most carousels
// reuse one or two images across slides and exports, and concurrent
// loads of the same source share a single fetch.
type CachingImageLoader struct {
	next  ImageLoader
	ttl   time.Duration
	clock ports.Clock
	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]*imageEntry
	lru      imageHeap
	maxBytes int64
	size     int64
	stats    ImageCacheStats
}

type imageEntry struct {
	src        string
	img        image.Image
	size       int64
	expiresAt  time.Time
	lastAccess time.Time
	index      int
}

// NewCachingImageLoader wraps next with a cache holding at most maxBytes of
// decoded pixels. A zero ttl keeps entries until they are evicted.
func NewCachingImageLoader(next ImageLoader, maxBytes int64, ttl time.Duration, clock ports.Clock) *CachingImageLoader {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &CachingImageLoader{
		next:     next,
		ttl:      ttl,
		clock:    clock,
		entries:  make(map[string]*imageEntry),
		maxBytes: maxBytes,
	}
}

// Load implements ImageLoader
func (c *CachingImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if img, ok := c.get(src); ok {
		return img, nil
	}

	v, err, _ := c.group.Do(src, func() (interface{}, error) {
		if img, ok := c.peek(src); ok {
			return img, nil
		}
		img, err := c.next.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		c.put(src, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Stats returns a snapshot of the counters
func (c *CachingImageLoader) Stats() ImageCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	stats.Bytes = c.size
	stats.MaxBytes = c.maxBytes
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

// Clear drops every entry
func (c *CachingImageLoader) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*imageEntry)
	c.lru = c.lru[:0]
	c.size = 0
}

func (c *CachingImageLoader) get(src string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[src]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	now := c.clock.Now()
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		c.remove(entry)
		c.stats.Evictions++
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	entry.lastAccess = now
	heap.Fix(&c.lru, entry.index)
	return entry.img, true
}

// peek looks src up without touching the counters or recency
func (c *CachingImageLoader) peek(src string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[src]
	if !ok || (!entry.expiresAt.IsZero() && c.clock.Now().After(entry.expiresAt)) {
		return nil, false
	}
	return entry.img, true
}

func (c *CachingImageLoader) put(src string, img image.Image) {
	size := imageBytes(img)
	if size > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[src]; ok {
		c.remove(old)
	}
	for c.size+size > c.maxBytes && c.lru.Len() > 0 {
		c.remove(c.lru[0])
		c.stats.Evictions++
	}

	now := c.clock.Now()
	entry := &imageEntry{src: src, img: img, size: size, lastAccess: now}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
	}
	c.entries[src] = entry
	heap.Push(&c.lru, entry)
	c.size += size
}

// remove must be called with mu held
func (c *CachingImageLoader) remove(entry *imageEntry) {
	heap.Remove(&c.lru, entry.index)
	delete(c.entries, entry.src)
	c.size -= entry.size
}

// imageBytes estimates the decoded size as four bytes per pixel
func imageBytes(img image.Image) int64 {
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}

// imageHeap orders entries by last access, oldest first
type imageHeap []*imageEntry

func (h imageHeap) Len() int { return len(h) }

func (h imageHeap) Less(i, j int) bool {
	return h[i].lastAccess.Before(h[j].lastAccess)
}

func (h imageHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *imageHeap) Push(x interface{}) {
	entry := x.(*imageEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *imageHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[:n-1]
	return entry
}

var _ ImageLoader = (*CachingImageLoader)(nil)
