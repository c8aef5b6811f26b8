// Package cache provides a sharded in-process TTL cache service.
// Construct one per tier at process start and pass it by reference; there is
// no ambient singleton. Entries are replaced wholesale, never patched in place
package cache

import (
	"hash/fnv"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// shardCount trades memory for lock granularity; cache contention gates
// request latency, so keys spread over independent shard locks
const shardCount = 16

// Stats reports process-lifetime counters for one cache tier
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
}

// Sharded is a TTL + max-size bounded cache, safe for concurrent use.
// Each shard is an expirable LRU with its own lock
type Sharded[V any] struct {
	shards [shardCount]*lru.LRU[string, V]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New builds a cache with maxEntries spread across shards and a single TTL.
// maxEntries <= 0 means each shard is unbounded (TTL-only eviction)
func New[V any](maxEntries int, ttl time.Duration) *Sharded[V] {
	perShard := 0
	if maxEntries > 0 {
		perShard = maxEntries / shardCount
		if perShard < 1 {
			perShard = 1
		}
	}
	c := &Sharded[V]{}
	for i := range c.shards {
		c.shards[i] = lru.NewLRU[string, V](perShard, nil, ttl)
	}
	return c
}

func (c *Sharded[V]) shard(key string) *lru.LRU[string, V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

// Get returns the cached value and whether it was present and unexpired
func (c *Sharded[V]) Get(key string) (V, bool) {
	v, ok := c.shard(key).Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores v under key, replacing any previous entry as a whole unit
func (c *Sharded[V]) Set(key string, v V) {
	c.shard(key).Add(key, v)
}

// Clear drops every entry in every shard
func (c *Sharded[V]) Clear() {
	for _, s := range c.shards {
		s.Purge()
	}
}

// Stats returns process-lifetime hit/miss counters and current entry count.
// Request-scoped hit rates are the caller's concern, not the cache's
func (c *Sharded[V]) Stats() Stats {
	size := 0
	for _, s := range c.shards {
		size += s.Len()
	}
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}
