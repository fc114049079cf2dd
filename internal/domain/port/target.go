package port

// TargetResolver turns a camera id into a stream connection target.
type TargetResolver interface {
	Target(cameraID string) string
}
