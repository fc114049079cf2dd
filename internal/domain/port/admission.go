package port

import (
	"context"
	"time"
)

// Slot is one unit of capture capacity. Release is idempotent.
type Slot interface {
	Release()
}

type AdmissionGate interface {
	// Acquire waits at most queueTimeout for a slot and returns entity.ErrBusy otherwise.
	Acquire(ctx context.Context, queueTimeout time.Duration) (Slot, error)
}
