package port

import "context"

type FailureNotifier interface {
	NotifyCameraDown(ctx context.Context, cameraID string, detail string) error
}
