package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

// cacheEntry is a cached provider reply.
type cacheEntry struct {
	expiry time.Time
	text   string
}

// responseCache is a TTL cache of replies keyed by request. Expired entries
// are evicted lazily on write, so it starts no goroutines.
type responseCache struct {
	entries  map[string]cacheEntry
	now      func() time.Time
	ttl      time.Duration
	maxItems int
	mu       sync.RWMutex
}

// newResponseCache creates a cache. A negative TTL disables caching.
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &responseCache{
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
		ttl:      ttl,
		maxItems: 1024,
	}
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.System))
	h.Write([]byte{0})
	h.Write([]byte(req.Prompt))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(req.JSON)))
	return hex.EncodeToString(h.Sum(nil))
}

// get retrieves a reply if present and unexpired.
func (c *responseCache) get(key string) (string, bool) {
	if c.ttl < 0 {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiry) {
		return "", false
	}
	return entry.text, true
}

// set stores a reply.
func (c *responseCache) set(key, text string) {
	if c.ttl < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= c.maxItems {
		for k, e := range c.entries {
			if now.After(e.expiry) {
				delete(c.entries, k)
			}
		}
		// Still full: drop an arbitrary entry.
		if len(c.entries) >= c.maxItems {
			for k := range c.entries {
				delete(c.entries, k)
				break
			}
		}
	}

	c.entries[key] = cacheEntry{text: text, expiry: now.Add(c.ttl)}
}

// size returns the number of entries in the cache.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
