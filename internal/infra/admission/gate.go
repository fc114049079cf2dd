package admission

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/ninespace/snapshot-api/internal/domain/port"
	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of captures running at once across the process.
// Waiters are not ordered; whichever goroutine sees a free slot first wins.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int
	inFlight atomic.Int64
}

func NewGate(capacity int) (*Gate, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("admission gate capacity must be >= 1, got %d", capacity)
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}, nil
}

// Acquire blocks until a slot frees up, queueTimeout elapses or ctx is done.
// Only the first case returns a slot; the others return entity.ErrBusy.
func (g *Gate) Acquire(ctx context.Context, queueTimeout time.Duration) (port.Slot, error) {
	if queueTimeout <= 0 {
		if !g.sem.TryAcquire(1) {
			return nil, entity.ErrBusy
		}
		return g.grant(), nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, queueTimeout)
	defer cancel()

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		return nil, entity.ErrBusy
	}
	return g.grant(), nil
}

func (g *Gate) grant() *slot {
	g.inFlight.Add(1)
	return &slot{gate: g}
}

func (g *Gate) Capacity() int {
	return g.capacity
}

// InFlight is the number of slots currently held.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

type slot struct {
	gate *Gate
	once sync.Once
}

func (s *slot) Release() {
	s.once.Do(func() {
		s.gate.inFlight.Add(-1)
		s.gate.sem.Release(1)
	})
}
