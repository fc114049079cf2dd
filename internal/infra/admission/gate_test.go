package admission

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGate_RejectsZeroCapacity(t *testing.T) {
	_, err := NewGate(0)
	assert.Error(t, err)
}

func TestGate_AcquireWithinCapacity(t *testing.T) {
	g, err := NewGate(2)
	require.NoError(t, err)

	s1, err := g.Acquire(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	s2, err := g.Acquire(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, g.InFlight())

	s1.Release()
	s2.Release()
	assert.Equal(t, 0, g.InFlight())
}

func TestGate_RejectsAfterQueueTimeout(t *testing.T) {
	g, err := NewGate(1)
	require.NoError(t, err)

	held, err := g.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	defer held.Release()

	start := time.Now()
	_, err = g.Acquire(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, entity.ErrBusy)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestGate_ZeroQueueTimeoutDoesNotWait(t *testing.T) {
	g, err := NewGate(1)
	require.NoError(t, err)

	held, err := g.Acquire(context.Background(), 0)
	require.NoError(t, err)

	_, err = g.Acquire(context.Background(), 0)
	assert.ErrorIs(t, err, entity.ErrBusy)

	held.Release()
	s, err := g.Acquire(context.Background(), 0)
	require.NoError(t, err)
	s.Release()
}

func TestGate_WaiterGetsReleasedSlot(t *testing.T) {
	g, err := NewGate(1)
	require.NoError(t, err)

	held, err := g.Acquire(context.Background(), time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		held.Release()
	}()

	s, err := g.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	s.Release()
}

func TestGate_DoubleReleaseIsNoop(t *testing.T) {
	g, err := NewGate(1)
	require.NoError(t, err)

	s, err := g.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	s.Release()
	s.Release()
	assert.Equal(t, 0, g.InFlight())

	// capacity must still be exactly one
	a, err := g.Acquire(context.Background(), 0)
	require.NoError(t, err)
	defer a.Release()
	_, err = g.Acquire(context.Background(), 0)
	assert.ErrorIs(t, err, entity.ErrBusy)
}

func TestGate_CancelledContextRejects(t *testing.T) {
	g, err := NewGate(1)
	require.NoError(t, err)

	held, err := g.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Acquire(ctx, time.Second)
	assert.ErrorIs(t, err, entity.ErrBusy)
}

func TestGate_NeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	g, err := NewGate(capacity)
	require.NoError(t, err)

	var (
		current atomic.Int64
		peak    atomic.Int64
		wg      sync.WaitGroup
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := g.Acquire(context.Background(), 2*time.Second)
			if err != nil {
				return
			}
			defer s.Release()
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(capacity))
	assert.Equal(t, 0, g.InFlight())
}
