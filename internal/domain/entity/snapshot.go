package entity

import "bytes"

const (
	DetailDecoded       = "decoded 1 frame"
	DetailBusy          = "busy"
	DetailInvalidCamera = "invalid camera id"
)

// SnapshotResult is the outcome of one snapshot request. OK implies Image is non-empty.
type SnapshotResult struct {
	CameraID  string `json:"camera_id"`
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latency_ms"`
	Detail    string `json:"detail"`
	Image     []byte `json:"-"`
}

func NewSuccessResult(cameraID string, latencyMs int64, image []byte) SnapshotResult {
	return SnapshotResult{
		CameraID:  cameraID,
		OK:        true,
		LatencyMs: latencyMs,
		Detail:    DetailDecoded,
		Image:     image,
	}
}

func NewFailureResult(cameraID string, latencyMs int64, detail string) SnapshotResult {
	return SnapshotResult{
		CameraID:  cameraID,
		LatencyMs: latencyMs,
		Detail:    detail,
	}
}

func NewBusyResult(cameraID string) SnapshotResult {
	return NewFailureResult(cameraID, 0, DetailBusy)
}

// Busy reports whether the request was rejected by admission control.
func (r SnapshotResult) Busy() bool {
	return !r.OK && r.Detail == DetailBusy
}

func (r SnapshotResult) InvalidCamera() bool {
	return !r.OK && r.Detail == DetailInvalidCamera
}

// Clone returns a copy that shares no memory with r.
func (r SnapshotResult) Clone() SnapshotResult {
	c := r
	if r.Image != nil {
		c.Image = bytes.Clone(r.Image)
	}
	return c
}
