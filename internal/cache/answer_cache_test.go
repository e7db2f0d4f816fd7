package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/millianlmx/rag/internal/domain"
)

func completed(answer string) *domain.QueryContext {
	return &domain.QueryContext{
		Question: "q",
		State:    domain.StateCompleted,
		Answer:   answer,
	}
}

func TestCacheHit(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)

	c.Put("what is go?", "", completed("a language"))

	qc, ok := c.Get("what is go?", "")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if qc.Answer != "a language" {
		t.Errorf("unexpected cached answer: %q", qc.Answer)
	}
}

func TestCacheScopeIsPartOfKey(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)

	c.Put("question", "doc1", completed("scoped"))

	if _, ok := c.Get("question", ""); ok {
		t.Error("unscoped lookup must not hit a scoped entry")
	}
	if _, ok := c.Get("question", "doc1"); !ok {
		t.Error("expected hit for matching scope")
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)

	c.Put("broken", "", &domain.QueryContext{State: domain.StateFailed})

	if _, ok := c.Get("broken", ""); ok {
		t.Error("failed queries must not be cached")
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Size())
	}
}

func TestCacheInvalidateDropsEntries(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)

	c.Put("q1", "", completed("a1"))
	c.Put("q2", "", completed("a2"))

	c.Invalidate()

	if _, ok := c.Get("q1", ""); ok {
		t.Error("expected miss after invalidation")
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache after invalidation, got %d", c.Size())
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewAnswerCache(2, time.Minute)

	c.Put("q1", "", completed("a1"))
	c.Put("q2", "", completed("a2"))
	c.Put("q3", "", completed("a3"))

	if _, ok := c.Get("q1", ""); ok {
		t.Error("expected oldest entry evicted")
	}
	if _, ok := c.Get("q3", ""); !ok {
		t.Error("expected newest entry present")
	}
	if c.Size() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Size())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewAnswerCache(10, 10*time.Millisecond)

	c.Put("q", "", completed("a"))
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("q", ""); ok {
		t.Error("expected entry to expire")
	}
}

func TestCacheLRUOrder(t *testing.T) {
	c := NewAnswerCache(2, time.Minute)

	c.Put("q1", "", completed("a1"))
	c.Put("q2", "", completed("a2"))

	// Touch q1 so q2 becomes the eviction candidate.
	if _, ok := c.Get("q1", ""); !ok {
		t.Fatal("expected q1 present")
	}
	c.Put("q3", "", completed("a3"))

	if _, ok := c.Get("q2", ""); ok {
		t.Error("expected least recently used entry evicted")
	}
	if _, ok := c.Get(fmt.Sprintf("q%d", 1), ""); !ok {
		t.Error("expected recently used entry kept")
	}
}
