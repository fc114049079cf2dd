package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/ninespace/snapshot-api/internal/domain/port"
	"go.uber.org/zap"
)

// CameraHealthTracker remembers the last capture outcome per camera and emits
// an event when it flips. Cameras not yet seen count as healthy, so the first
// failed capture of a camera is reported as going down. When built with a
// camera list, captures of any other id are ignored.
type CameraHealthTracker struct {
	mu        sync.Mutex
	healthy   map[string]bool
	tracked   map[string]struct{}
	publisher port.HealthEventPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
}

// NewCameraHealthTracker accepts nil publisher or notifier to disable that sink.
// With no cameras every id is tracked.
func NewCameraHealthTracker(publisher port.HealthEventPublisher, notifier port.FailureNotifier, logger *zap.Logger, cameras ...string) *CameraHealthTracker {
	t := &CameraHealthTracker{
		healthy:   make(map[string]bool),
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
	if len(cameras) > 0 {
		t.tracked = make(map[string]struct{}, len(cameras))
		for _, id := range cameras {
			t.tracked[id] = struct{}{}
		}
	}
	return t
}

func (t *CameraHealthTracker) ObserveCapture(ctx context.Context, result entity.SnapshotResult) error {
	if t.tracked != nil {
		if _, ok := t.tracked[result.CameraID]; !ok {
			return nil
		}
	}

	t.mu.Lock()
	prev, seen := t.healthy[result.CameraID]
	if !seen {
		prev = true
	}
	t.healthy[result.CameraID] = result.OK
	t.mu.Unlock()

	if prev == result.OK {
		return nil
	}

	event := entity.NewCameraHealthEvent(result)
	t.logger.Info("camera health changed",
		zap.String("camera_id", result.CameraID),
		zap.Bool("healthy", result.OK),
		zap.String("detail", result.Detail),
	)

	var errs []error
	if t.publisher != nil {
		if err := t.publisher.PublishHealth(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("publish health event: %w", err))
		}
	}
	if !result.OK && t.notifier != nil {
		if err := t.notifier.NotifyCameraDown(ctx, result.CameraID, result.Detail); err != nil {
			errs = append(errs, fmt.Errorf("notify camera down: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Healthy reports the last known state of a camera and whether it was seen.
func (t *CameraHealthTracker) Healthy(cameraID string) (healthy bool, seen bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	healthy, seen = t.healthy[cameraID]
	return healthy, seen
}
