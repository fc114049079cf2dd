package entity

import (
	"time"

	"github.com/google/uuid"
)

// CaptureRecord is one row of the capture log.
type CaptureRecord struct {
	ID         uuid.UUID `json:"id"`
	CameraID   string    `json:"camera_id"`
	OK         bool      `json:"ok"`
	LatencyMs  int64     `json:"latency_ms"`
	Detail     string    `json:"detail"`
	ImageBytes int       `json:"image_bytes"`
	CapturedAt time.Time `json:"captured_at"`
}

func NewCaptureRecord(r SnapshotResult) CaptureRecord {
	return CaptureRecord{
		ID:         uuid.New(),
		CameraID:   r.CameraID,
		OK:         r.OK,
		LatencyMs:  r.LatencyMs,
		Detail:     r.Detail,
		ImageBytes: len(r.Image),
		CapturedAt: time.Now().UTC(),
	}
}

// CameraHealthEvent is published whenever a camera flips between healthy and failing.
type CameraHealthEvent struct {
	ID        uuid.UUID `json:"id"`
	CameraID  string    `json:"camera_id"`
	Healthy   bool      `json:"healthy"`
	Detail    string    `json:"detail"`
	LatencyMs int64     `json:"latency_ms"`
	At        time.Time `json:"at"`
}

func NewCameraHealthEvent(r SnapshotResult) CameraHealthEvent {
	return CameraHealthEvent{
		ID:        uuid.New(),
		CameraID:  r.CameraID,
		Healthy:   r.OK,
		Detail:    r.Detail,
		LatencyMs: r.LatencyMs,
		At:        time.Now().UTC(),
	}
}

func (e CameraHealthEvent) RoutingKey() string {
	if e.Healthy {
		return "camera.health.up"
	}
	return "camera.health.down"
}
