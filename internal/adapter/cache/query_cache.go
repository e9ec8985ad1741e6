package cache

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"cmdref/internal/domain"
	"cmdref/internal/port"
)

// QueryCache is a small LRU of search results with a TTL. Each entry
// remembers the index generation it was computed against and is dropped
// once the engine serves a different one.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[uint64]*cacheEntry
	order   []uint64
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	results    []domain.SearchResult
	timestamp  time.Time
	generation uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[uint64]*cacheEntry),
		order:   make([]uint64, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// cacheKey hashes the options that affect the result. The query is
// normalized the way the engine normalizes it, so "LS" and " ls" share a key.
func cacheKey(opts domain.SearchOptions) uint64 {
	d := xxhash.New()
	d.WriteString(strings.ToLower(strings.TrimSpace(opts.Query)))
	d.WriteString("\x00")
	if opts.Section != nil {
		d.WriteString(strconv.Itoa(*opts.Section))
	}
	d.WriteString("\x00")
	d.WriteString(string(opts.Complexity))
	d.WriteString("\x00")
	d.WriteString(opts.Category)
	d.WriteString("\x00")
	if opts.Limit != nil {
		d.WriteString(strconv.Itoa(*opts.Limit))
	}
	d.WriteString("\x00")
	d.WriteString(strconv.FormatBool(opts.CommonOnly))
	d.WriteString(strconv.FormatBool(opts.IncludeMatches))
	return d.Sum64()
}

func (c *QueryCache) Get(opts domain.SearchOptions, generation uint64) ([]domain.SearchResult, bool) {
	key := cacheKey(opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl || entry.generation != generation {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return cloneResults(entry.results), true
}

func (c *QueryCache) Put(opts domain.SearchOptions, generation uint64, results []domain.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(opts)
	entry := &cacheEntry{
		results:    cloneResults(results),
		timestamp:  c.now(),
		generation: generation,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// cloneResults deep-copies results so no two callers share a slice.
func cloneResults(results []domain.SearchResult) []domain.SearchResult {
	out := make([]domain.SearchResult, len(results))
	for i, r := range results {
		r.Keywords = slices.Clone(r.Keywords)
		r.Matches = slices.Clone(r.Matches)
		out[i] = r
	}
	return out
}

func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uint64]*cacheEntry)
	c.order = c.order[:0]
}

func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key uint64) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key uint64) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedSearcher serves repeated searches from a QueryCache. Suggestions
// and related lookups are cheap and pass straight through.
type CachedSearcher struct {
	searcher port.Searcher
	cache    *QueryCache
}

func NewCachedSearcher(searcher port.Searcher, cache *QueryCache) *CachedSearcher {
	return &CachedSearcher{
		searcher: searcher,
		cache:    cache,
	}
}

func (s *CachedSearcher) Search(opts domain.SearchOptions) []domain.SearchResult {
	gen := s.searcher.Generation()
	if results, hit := s.cache.Get(opts, gen); hit {
		return results
	}

	results := s.searcher.Search(opts)
	// nothing is cached before the first snapshot
	if gen != 0 {
		s.cache.Put(opts, gen, results)
	}
	return results
}

func (s *CachedSearcher) GetSuggestions(prefix string, limit int) []string {
	return s.searcher.GetSuggestions(prefix, limit)
}

func (s *CachedSearcher) GetRelated(id string, limit int) []domain.RelatedCommand {
	return s.searcher.GetRelated(id, limit)
}

func (s *CachedSearcher) Generation() uint64 {
	return s.searcher.Generation()
}
