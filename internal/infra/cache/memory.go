package cache

import (
	"sync"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
)

type entry struct {
	result     entity.SnapshotResult
	capturedAt time.Time
}

// ResultCache keeps the latest result per camera and serves it while younger
// than the freshness window. Stale entries are ignored on read and replaced on
// the next Put; nothing is evicted in the background.
type ResultCache struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	freshness time.Duration
	now       func() time.Time
}

func NewResultCache(freshness time.Duration) *ResultCache {
	return &ResultCache{
		entries:   make(map[string]*entry),
		freshness: freshness,
		now:       time.Now,
	}
}

func (c *ResultCache) Get(cameraID string) (entity.SnapshotResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[cameraID]
	c.mu.RUnlock()
	if !ok {
		return entity.SnapshotResult{}, false
	}
	if c.now().Sub(e.capturedAt) >= c.freshness {
		return entity.SnapshotResult{}, false
	}
	return e.result.Clone(), true
}

// Put replaces the entry for cameraID and stamps it with the current time.
func (c *ResultCache) Put(cameraID string, result entity.SnapshotResult) {
	e := &entry{result: result.Clone(), capturedAt: c.now()}
	c.mu.Lock()
	c.entries[cameraID] = e
	c.mu.Unlock()
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
