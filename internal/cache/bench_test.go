package cache

import (
	"strconv"
	"testing"
)

func BenchmarkShardedGet(b *testing.B) {
	c := NewSharded[string, int](100, StringHasher)
	for i := 0; i < 100; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("50")
	}
}

func BenchmarkShardedGetOrCreate(b *testing.B) {
	c := NewSharded[string, int](100, StringHasher)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.GetOrCreate(strconv.Itoa(i%100), func() int { return i })
	}
}

func BenchmarkShardedParallel(b *testing.B) {
	c := NewSharded[string, int](100, StringHasher)
	keys := make([]string, 256)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.GetOrCreate(keys[i%len(keys)], func() int { return i })
			i++
		}
	})
}
