package tmtree

// DefaultCacheSize is the leaf-hash cache bound used when none is configured.
const DefaultCacheSize = 4096

// LeafCache memoizes leaf digests by exact content for the duration of a
// single build. Entries are admitted first come first served until the cache
// holds maxSize entries; after that new content is hashed but not stored.
// Nothing is ever evicted.
type LeafCache struct {
	maxSize int
	entries map[string][32]byte
	hits    uint64
	misses  uint64
}

// NewLeafCache creates a cache bounded to maxSize entries.
// A non-positive maxSize selects DefaultCacheSize.
func NewLeafCache(maxSize int) *LeafCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &LeafCache{
		maxSize: maxSize,
		entries: make(map[string][32]byte),
	}
}

// Get returns the cached digest of data, if present.
func (c *LeafCache) Get(data []byte) ([32]byte, bool) {
	h, ok := c.entries[string(data)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return h, ok
}

// Put stores the digest of data unless the cache is full.
// It reports whether the entry was admitted.
func (c *LeafCache) Put(data []byte, hash [32]byte) bool {
	if _, ok := c.entries[string(data)]; ok {
		return true
	}
	if len(c.entries) >= c.maxSize {
		return false
	}
	c.entries[string(data)] = hash
	return true
}

// LeafHash returns the digest of data through the cache.
func (c *LeafCache) LeafHash(engine *HashEngine, data []byte) [32]byte {
	if h, ok := c.Get(data); ok {
		return h
	}
	h := engine.LeafHash(data)
	c.Put(data, h)
	return h
}

// Size returns the current number of entries in the cache.
func (c *LeafCache) Size() int {
	return len(c.entries)
}

// MaxSize returns the maximum capacity of the cache.
func (c *LeafCache) MaxSize() int {
	return c.maxSize
}

// Stats returns cache statistics.
func (c *LeafCache) Stats() (hits, misses uint64, size int) {
	return c.hits, c.misses, len(c.entries)
}
