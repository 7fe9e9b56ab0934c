package trending

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"github.com/veslov/newspulse/app/geo"
)

// BucketKey identifies a cache slot: the request parameters plus the
// coarse-grid cell the request location falls into.
type BucketKey struct {
	Mode        string
	HasLocation bool
	Lat         float64
	Lon         float64
	Limit       int
	RadiusKm    float64
}

type cacheEntry struct {
	key       BucketKey
	results   []ScoredArticle
	createdAt time.Time
}

// Cache memoizes trending computations per geospatial bucket. Entries expire
// after the TTL and the least recently used entry is evicted beyond capacity.
// Compute errors are never cached.
type Cache struct {
	ttl       time.Duration
	capacity  int
	precision float64

	mu      sync.Mutex
	entries map[BucketKey]*list.Element
	order   *list.List // front = most recently used
}

func NewCache(ttl time.Duration, capacity int, precision float64) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		ttl:       ttl,
		capacity:  capacity,
		precision: precision,
		entries:   make(map[BucketKey]*list.Element),
		order:     list.New(),
	}
}

// Key buckets a location onto the cache grid. A nil location keys the global
// aggregation.
func (c *Cache) Key(mode string, location *geo.Location, limit int, radiusKm float64) BucketKey {
	key := BucketKey{Mode: mode, Limit: limit, RadiusKm: radiusKm}
	if location != nil {
		bucket := geo.Bucket(*location, c.precision)
		key.HasLocation = true
		key.Lat = bucket.Lat
		key.Lon = bucket.Lon
	}
	return key
}

// GetOrCompute returns the cached result for the key when fresh, otherwise
// invokes compute and stores its result. Access is serialized so concurrent
// misses on the same bucket recompute only once.
func (c *Cache) GetOrCompute(key BucketKey, compute func() ([]ScoredArticle, error)) ([]ScoredArticle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		switch {
		case entry.results == nil:
			// Invariant violation; discard and recompute.
			slog.Warn("Corrupted trending cache entry discarded", "bucket", key)
			c.removeLocked(elem)
		case time.Since(entry.createdAt) >= c.ttl:
			c.removeLocked(elem)
		default:
			c.order.MoveToFront(elem)
			return entry.results, nil
		}
	}

	results, err := compute()
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []ScoredArticle{}
	}

	elem := c.order.PushFront(&cacheEntry{key: key, results: results, createdAt: time.Now()})
	c.entries[key] = elem

	for c.order.Len() > c.capacity {
		c.removeLocked(c.order.Back())
	}

	return results, nil
}

// Invalidate drops every cached entry. Called when new interaction events
// land, since any bucket may be affected.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[BucketKey]*list.Element)
	c.order.Init()
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if time.Since(elem.Value.(*cacheEntry).createdAt) >= c.ttl {
			c.removeLocked(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the configured entry limit.
func (c *Cache) Capacity() int {
	return c.capacity
}

func (c *Cache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
