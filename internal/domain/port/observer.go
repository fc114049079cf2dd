package port

import (
	"context"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
)

// CaptureObserver is told about every capture attempt, successful or not.
// Cache hits and busy rejections are not observed.
//
//go:generate mockgen -source=observer.go -destination=mocks/mock_observer.go -package=mocks
type CaptureObserver interface {
	ObserveCapture(ctx context.Context, result entity.SnapshotResult) error
}

type CaptureHistory interface {
	Recent(ctx context.Context, cameraID string, limit int) ([]entity.CaptureRecord, error)
}
