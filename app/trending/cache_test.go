package trending

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/veslov/newspulse/app/geo"
)

func cachedResults(ids ...string) []ScoredArticle {
	var result []ScoredArticle
	for _, id := range ids {
		result = append(result, ScoredArticle{Article: testArticle(id, time.Now()), Score: 0.5})
	}
	return result
}

func TestCache_ComputeOnceWithinTTL(t *testing.T) {
	cache := NewCache(5*time.Minute, 16, 0.5)
	location := &geo.Location{Lat: 37.44, Lon: -122.14}
	key := cache.Key("trending", location, 5, 0)

	calls := 0
	compute := func() ([]ScoredArticle, error) {
		calls++
		return cachedResults("a"), nil
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.GetOrCompute(key, compute); err != nil {
			t.Fatalf("GetOrCompute failed: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("Expected compute to run once within TTL, ran %d times", calls)
	}
}

func TestCache_NearbyLocationsShareBucket(t *testing.T) {
	cache := NewCache(5*time.Minute, 16, 0.5)

	first := cache.Key("trending", &geo.Location{Lat: 37.44, Lon: -122.14}, 5, 0)
	second := cache.Key("trending", &geo.Location{Lat: 37.48, Lon: -122.18}, 5, 0)

	if first != second {
		t.Errorf("Expected nearby locations to share a bucket: %v vs %v", first, second)
	}
}

func TestCache_DifferentParamsDifferentBuckets(t *testing.T) {
	cache := NewCache(5*time.Minute, 16, 0.5)
	location := &geo.Location{Lat: 37.44, Lon: -122.14}

	if cache.Key("trending", location, 5, 0) == cache.Key("trending", location, 10, 0) {
		t.Error("Expected different limits to produce different buckets")
	}
	if cache.Key("trending", location, 5, 0) == cache.Key("nearby", location, 5, 0) {
		t.Error("Expected different modes to produce different buckets")
	}
	if cache.Key("trending", location, 5, 0) == cache.Key("trending", nil, 5, 0) {
		t.Error("Expected global key to differ from located key")
	}
}

func TestCache_ExpiryTriggersRecompute(t *testing.T) {
	cache := NewCache(10*time.Millisecond, 16, 0.5)
	key := cache.Key("trending", nil, 5, 0)

	calls := 0
	compute := func() ([]ScoredArticle, error) {
		calls++
		return cachedResults("a"), nil
	}

	cache.GetOrCompute(key, compute)
	time.Sleep(20 * time.Millisecond)
	cache.GetOrCompute(key, compute)

	if calls != 2 {
		t.Errorf("Expected recompute after TTL expiry, got %d calls", calls)
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	cache := NewCache(5*time.Minute, 16, 0.5)
	key := cache.Key("trending", nil, 5, 0)

	calls := 0
	failing := func() ([]ScoredArticle, error) {
		calls++
		return nil, errors.New("store unavailable")
	}

	if _, err := cache.GetOrCompute(key, failing); err == nil {
		t.Fatal("Expected compute error to propagate")
	}
	if _, err := cache.GetOrCompute(key, failing); err == nil {
		t.Fatal("Expected compute error to propagate")
	}

	if calls != 2 {
		t.Errorf("Expected failed computes to never be cached, got %d calls", calls)
	}
}

func TestCache_EmptyResultIsCached(t *testing.T) {
	cache := NewCache(5*time.Minute, 16, 0.5)
	key := cache.Key("trending", nil, 5, 0)

	calls := 0
	compute := func() ([]ScoredArticle, error) {
		calls++
		return nil, nil
	}

	cache.GetOrCompute(key, compute)
	cache.GetOrCompute(key, compute)

	if calls != 1 {
		t.Errorf("Expected empty result to be cached (not an error), got %d calls", calls)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	cache := NewCache(5*time.Minute, 2, 0.5)

	keyA := cache.Key("trending", &geo.Location{Lat: 10, Lon: 10}, 5, 0)
	keyB := cache.Key("trending", &geo.Location{Lat: 20, Lon: 20}, 5, 0)
	keyC := cache.Key("trending", &geo.Location{Lat: 30, Lon: 30}, 5, 0)

	calls := map[string]int{}
	compute := func(name string) func() ([]ScoredArticle, error) {
		return func() ([]ScoredArticle, error) {
			calls[name]++
			return cachedResults(name), nil
		}
	}

	cache.GetOrCompute(keyA, compute("a"))
	cache.GetOrCompute(keyB, compute("b"))
	// Touch A so B becomes least recently used
	cache.GetOrCompute(keyA, compute("a"))
	// C evicts B
	cache.GetOrCompute(keyC, compute("c"))
	cache.GetOrCompute(keyB, compute("b"))

	if calls["a"] != 1 {
		t.Errorf("Expected A computed once, got %d", calls["a"])
	}
	if calls["b"] != 2 {
		t.Errorf("Expected B recomputed after eviction, got %d", calls["b"])
	}
	if cache.Len() > cache.Capacity() {
		t.Errorf("Cache size %d exceeds capacity %d", cache.Len(), cache.Capacity())
	}
}

func TestCache_Sweep(t *testing.T) {
	cache := NewCache(10*time.Millisecond, 16, 0.5)

	cache.GetOrCompute(cache.Key("trending", nil, 5, 0), func() ([]ScoredArticle, error) {
		return cachedResults("a"), nil
	})

	time.Sleep(20 * time.Millisecond)

	if removed := cache.Sweep(); removed != 1 {
		t.Errorf("Expected sweep to remove 1 expired entry, removed %d", removed)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after sweep, got %d entries", cache.Len())
	}
}

func TestCache_Invalidate(t *testing.T) {
	cache := NewCache(5*time.Minute, 16, 0.5)
	key := cache.Key("trending", nil, 5, 0)

	calls := 0
	compute := func() ([]ScoredArticle, error) {
		calls++
		return cachedResults("a"), nil
	}

	cache.GetOrCompute(key, compute)
	cache.Invalidate()
	cache.GetOrCompute(key, compute)

	if calls != 2 {
		t.Errorf("Expected recompute after invalidation, got %d calls", calls)
	}
}

func TestCache_ConcurrentAccessComputesOnce(t *testing.T) {
	cache := NewCache(5*time.Minute, 16, 0.5)
	key := cache.Key("trending", &geo.Location{Lat: 37.44, Lon: -122.14}, 5, 0)

	var mu sync.Mutex
	calls := 0
	compute := func() ([]ScoredArticle, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return cachedResults("a"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.GetOrCompute(key, compute)
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("Expected concurrent misses to compute once, got %d", calls)
	}
}
