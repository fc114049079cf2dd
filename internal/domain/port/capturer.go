package port

import (
	"context"
	"time"
)

// FrameCapturer grabs one JPEG frame from a stream target within timeout.
// Failures are reported as *entity.CaptureError.
//
//go:generate mockgen -source=capturer.go -destination=mocks/mock_capturer.go -package=mocks
type FrameCapturer interface {
	Capture(ctx context.Context, target string, timeout time.Duration) ([]byte, error)
}
