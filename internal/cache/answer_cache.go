// Package cache provides a small LRU cache for completed answers, used by
// the interactive chat session to avoid re-running the pipeline for a
// repeated question.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/millianlmx/rag/internal/domain"
)

// AnswerCache caches completed query contexts keyed by question and scope.
// Entries expire after a TTL and the whole cache is invalidated by bumping
// a generation counter whenever the knowledge base changes.
type AnswerCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	gen     uint64
}

type cacheEntry struct {
	qc        *domain.QueryContext
	timestamp time.Time
	gen       uint64
}

// NewAnswerCache creates a cache holding up to maxSize answers for ttl.
func NewAnswerCache(maxSize int, ttl time.Duration) *AnswerCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question, docID string) string {
	hash := sha256.Sum256([]byte(question + "\x00" + docID))
	return hex.EncodeToString(hash[:16])
}

// Get returns a cached answer, or false when missing, expired, or stale
// relative to the current generation.
func (c *AnswerCache) Get(question, docID string) (*domain.QueryContext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, docID)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if entry.gen != c.gen || time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return entry.qc, true
}

// Put stores a completed answer. Failed queries are not cached.
func (c *AnswerCache) Put(question, docID string, qc *domain.QueryContext) {
	if qc == nil || qc.State != domain.StateCompleted {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, docID)
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{qc: qc, timestamp: time.Now(), gen: c.gen}
	c.moveToEnd(key)
}

// Invalidate drops all cached answers. Called after ingestion or removal.
func (c *AnswerCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.gen++
}

// Size returns the number of cached answers.
func (c *AnswerCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *AnswerCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *AnswerCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *AnswerCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
