// Package cache provides the concurrent LRU used to memoize compiled
// geometry programs and sampled palette tables.
//
// # Sharded
//
// Sharded splits its keys over 16 independently locked shards, each with
// its own recency list, so tiles compiling or looking up different
// geometries rarely contend:
//
//	tables := cache.NewSharded[string, []RGBA](16, cache.StringHasher)
//	t := tables.GetOrCreate("jet/256", func() []RGBA { return sample(cm, 256) })
//
// GetOrCreate builds each key at most once; the value is shared by every
// caller and must not be mutated afterwards.
//
// # Thread Safety
//
// Sharded is safe for concurrent use and must not be copied after creation.
package cache
