package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(freshness time.Duration) (*ResultCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewResultCache(freshness)
	c.now = clock.Now
	return c, clock
}

func TestResultCache_MissOnEmpty(t *testing.T) {
	c, _ := newTestCache(time.Second)
	_, ok := c.Get("1")
	assert.False(t, ok)
}

func TestResultCache_HitWithinWindow(t *testing.T) {
	c, clock := newTestCache(800 * time.Millisecond)
	c.Put("1", entity.NewSuccessResult("1", 300, []byte{0xff, 0xd8, 1, 2}))

	clock.Advance(799 * time.Millisecond)
	got, ok := c.Get("1")
	require.True(t, ok)
	assert.True(t, got.OK)
	assert.Equal(t, int64(300), got.LatencyMs)
	assert.Equal(t, []byte{0xff, 0xd8, 1, 2}, got.Image)
}

func TestResultCache_ExpiresAtWindowBoundary(t *testing.T) {
	c, clock := newTestCache(800 * time.Millisecond)
	c.Put("1", entity.NewFailureResult("1", 120, "connection refused"))

	clock.Advance(800 * time.Millisecond)
	_, ok := c.Get("1")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "stale entries are not evicted eagerly")
}

func TestResultCache_PutReplacesAndRestamps(t *testing.T) {
	c, clock := newTestCache(time.Second)
	c.Put("1", entity.NewFailureResult("1", 10, "timeout"))
	clock.Advance(900 * time.Millisecond)
	c.Put("1", entity.NewSuccessResult("1", 20, []byte{0xff, 0xd8}))
	clock.Advance(900 * time.Millisecond)

	got, ok := c.Get("1")
	require.True(t, ok)
	assert.True(t, got.OK)
	assert.Equal(t, int64(20), got.LatencyMs)
	assert.Equal(t, 1, c.Len())
}

func TestResultCache_KeysAreIndependent(t *testing.T) {
	c, _ := newTestCache(time.Second)
	c.Put("1", entity.NewFailureResult("1", 10, "timeout"))

	_, ok := c.Get("2")
	assert.False(t, ok)
}

func TestResultCache_ReturnedImageIsACopy(t *testing.T) {
	c, _ := newTestCache(time.Second)
	img := []byte{0xff, 0xd8, 9}
	c.Put("1", entity.NewSuccessResult("1", 5, img))
	img[2] = 0

	got, ok := c.Get("1")
	require.True(t, ok)
	got.Image[2] = 7

	again, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xd8, 9}, again.Image)
}

func TestResultCache_ConcurrentAccess(t *testing.T) {
	c := NewResultCache(time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Put("1", entity.NewSuccessResult("1", 1, []byte{0xff, 0xd8}))
		}()
		go func() {
			defer wg.Done()
			if r, ok := c.Get("1"); ok {
				assert.Equal(t, entity.DetailDecoded, r.Detail)
			}
		}()
	}
	wg.Wait()
}
