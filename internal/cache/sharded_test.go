package cache

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// oneShard sends every key to shard 0 so eviction order is observable.
func oneShard(string) uint64 { return 0 }

func TestShardedGetSet(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)

	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key1 to exist")
	}
	if val != 42 {
		t.Errorf("Get(key1) = %d, want 42", val)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected missing key to not exist")
	}

	c.Set("key1", 7)
	if val, _ := c.Get("key1"); val != 7 {
		t.Errorf("Get(key1) after overwrite = %d, want 7", val)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestShardedGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	calls := 0

	val := c.GetOrCreate("k", func() int {
		calls++
		return 100
	})
	if val != 100 {
		t.Errorf("GetOrCreate() = %d, want 100", val)
	}

	val = c.GetOrCreate("k", func() int {
		calls++
		return 200
	})
	if val != 100 {
		t.Errorf("GetOrCreate() cached = %d, want 100", val)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("Stats() hits=%d misses=%d, want 1/1", st.Hits, st.Misses)
	}
	if got := st.HitRate(); got != 0.5 {
		t.Errorf("HitRate() = %v, want 0.5", got)
	}
}

func TestShardedEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSharded[string, int](3, oneShard)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the oldest.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to exist")
	}
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestShardedDeleteAndPurge(t *testing.T) {
	c := NewSharded[string, int](10, StringHasher)
	for i := 0; i < 20; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	if !c.Delete("3") {
		t.Error("Delete(3) = false, want true")
	}
	if c.Delete("3") {
		t.Error("second Delete(3) = true, want false")
	}
	if c.Len() != 19 {
		t.Errorf("Len() = %d, want 19", c.Len())
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", c.Len())
	}
}

func TestShardedDefaultCapacity(t *testing.T) {
	c := NewSharded[string, int](0, StringHasher)
	if got := c.Stats().Capacity; got != DefaultCapacity*ShardCount {
		t.Errorf("Capacity = %d, want %d", got, DefaultCapacity*ShardCount)
	}
}

func TestShardedConcurrentGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](64, StringHasher)
	var creates atomic.Int32

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := strconv.Itoa(i % 10)
				c.GetOrCreate(key, func() int {
					creates.Add(1)
					return i % 10
				})
			}
		}()
	}
	wg.Wait()

	if got := creates.Load(); got != 10 {
		t.Errorf("create called %d times, want 10", got)
	}
}
