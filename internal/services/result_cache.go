package services

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ayah-search-api/internal/models"
)

// ResultCache is a TTL-bounded LRU over search results. When disabled (the
// default for a fresh install) every Get is a miss and every Put is a no-op,
// so callers never branch on whether caching is on. Cached entries may be
// stale for up to the TTL after a re-ingestion; verse text is near-static,
// so no invalidation on data change is performed.
type ResultCache struct {
	enabled    bool
	capacity   int
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

type cacheEntry struct {
	key       string
	results   []models.RankedResult
	expiresAt time.Time
}

// NewResultCache creates a result cache. A disabled cache holds nothing.
func NewResultCache(enabled bool, capacity int, defaultTTL time.Duration) *ResultCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &ResultCache{
		enabled:    enabled,
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// CacheKey derives the cache key from the normalized query parameters.
func CacheKey(query, language, method string, limit int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", normalized, language, method, limit)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached results for a key, or a miss.
func (c *ResultCache) Get(key string) ([]models.RankedResult, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return entry.results, true
}

// Put stores results under a key with the default TTL.
func (c *ResultCache) Put(key string, results []models.RankedResult) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.results = results
		entry.expiresAt = time.Now().Add(c.defaultTTL)
		c.order.MoveToFront(elem)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	elem := c.order.PushFront(&cacheEntry{
		key:       key,
		results:   results,
		expiresAt: time.Now().Add(c.defaultTTL),
	})
	c.entries[key] = elem
}
