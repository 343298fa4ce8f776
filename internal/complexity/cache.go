package complexity

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/astx"
)

// Cache is a thread-safe least-recently-used cache of computed Metrics,
// keyed by an xxhash of the function node's raw source bytes rather than
// its FunctionID, so a byte-identical function moved to another file or
// line still hits the cache: a content hash, not an identity hash. The
// key is not a normalized token stream, so a renamed or reformatted
// function misses.
type Cache struct {
	maxSize int
	mu      sync.Mutex
	items   map[uint64]*list.Element
	order   *list.List

	hits      int
	misses    int
	evictions int
}

type cacheEntry struct {
	key   uint64
	value Metrics
}

// NewCache creates an LRU cache of computed Metrics with the given
// maximum entry count. A non-positive size falls back to a sane default
// so a misconfigured caller degrades to "small cache" rather than "no
// cache" or a panic.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &Cache{
		maxSize: maxSize,
		items:   make(map[uint64]*list.Element),
		order:   list.New(),
	}
}

// HashContent computes the stable cache key for a function body: the
// tree-sitter node's raw byte range, hashed with xxhash for speed.
func HashContent(node *tree_sitter.Node, content []byte) uint64 {
	if node == nil {
		return 0
	}
	return xxhash.Sum64(content[node.StartByte():node.EndByte()])
}

// Get retrieves a cached Metrics by content hash, marking it
// recently-used on hit.
func (c *Cache) Get(key uint64) (Metrics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		c.hits++
		return elem.Value.(*cacheEntry).value, true
	}
	c.misses++
	return Metrics{}, false
}

// Set inserts or updates a cached Metrics, evicting the least-recently
// used entry if the cache is at capacity.
func (c *Cache) Set(key uint64, value Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = value
		c.order.MoveToFront(elem)
		return
	}
	elem := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = elem
	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
			c.evictions++
		}
	}
}

// CacheStats is a point-in-time snapshot of the cache's counters,
// surfaced through the debug logger at verbose levels.
type CacheStats struct {
	Entries   int
	Hits      int
	Misses    int
	Evictions int
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats reports the cumulative hit/miss counts alone; Snapshot carries
// the full counter set.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Snapshot returns the full counter set as a CacheStats value.
func (c *Cache) Snapshot() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   c.order.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// AnalyzeCached is Analyze with an LRU cache in front of it, keyed by the
// function body's content hash.
func AnalyzeCached(cache *Cache, lang astx.Language, node *tree_sitter.Node, content []byte, lengthLines int) Metrics {
	key := HashContent(node, content)
	if m, ok := cache.Get(key); ok {
		return m
	}
	m := Analyze(lang, node, content, lengthLines)
	cache.Set(key, m)
	return m
}
