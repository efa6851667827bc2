// Package cache holds recent classification responses so repeated
// classify calls for the same page skip the fetch.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/use-agent/solvewatch/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  *models.ClassifyResponse
	createdAt time.Time
}

// Cache is a simple in-memory cache for classification responses.
// Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a Cache with the given capacity. A background goroutine
// evicts entries older than 1 hour every 5 minutes.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}
	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the URL and whether metadata extraction
// was requested (a metadata-bearing response must not satisfy a
// classification-only request's shape and vice versa).
func Key(url string, withMetadata bool) string {
	h := sha256.New()
	h.Write([]byte(url))
	if withMetadata {
		h.Write([]byte("|meta"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response if it exists and is younger than
// maxAgeMs. maxAgeMs <= 0 disables lookup entirely.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ClassifyResponse, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > time.Duration(maxAgeMs)*time.Millisecond {
		return nil, false
	}

	// Hand out a copy: handlers stamp CacheStatus and Timing onto the
	// response they serve, and concurrent hits must not scribble on the
	// stored entry. Shallow is enough, Metadata is immutable once built.
	cp := *e.response
	return &cp, true
}

// Set stores a copy of the response (the caller keeps mutating its own)
// keyed for later Get. At capacity, one random entry is evicted to make
// room (map iteration order is random in Go).
func (c *Cache) Set(key string, resp *models.ClassifyResponse) {
	cp := *resp
	cp.CacheStatus = ""

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  &cp,
		createdAt: time.Now(),
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
