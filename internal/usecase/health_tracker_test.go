package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.CameraHealthEvent
	err    error
}

func (p *recordingPublisher) PublishHealth(_ context.Context, event entity.CameraHealthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	cameras []string
}

func (n *recordingNotifier) NotifyCameraDown(_ context.Context, cameraID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cameras = append(n.cameras, cameraID)
	return nil
}

func TestHealthTracker_EmitsOnTransitionsOnly(t *testing.T) {
	pub := &recordingPublisher{}
	notif := &recordingNotifier{}
	tracker := NewCameraHealthTracker(pub, notif, zap.NewNop())
	ctx := context.Background()

	ok := entity.NewSuccessResult("1", 100, []byte{0xff, 0xd8, 0})
	fail := entity.NewFailureResult("1", 2500, "timeout")

	require.NoError(t, tracker.ObserveCapture(ctx, ok))   // unseen counts as healthy
	require.NoError(t, tracker.ObserveCapture(ctx, fail)) // down
	require.NoError(t, tracker.ObserveCapture(ctx, fail)) // still down
	require.NoError(t, tracker.ObserveCapture(ctx, ok))   // up

	require.Len(t, pub.events, 2)
	assert.False(t, pub.events[0].Healthy)
	assert.Equal(t, "timeout", pub.events[0].Detail)
	assert.Equal(t, "camera.health.down", pub.events[0].RoutingKey())
	assert.True(t, pub.events[1].Healthy)
	assert.Equal(t, "camera.health.up", pub.events[1].RoutingKey())

	assert.Equal(t, []string{"1"}, notif.cameras)

	healthy, seen := tracker.Healthy("1")
	assert.True(t, seen)
	assert.True(t, healthy)
}

func TestHealthTracker_FirstFailureIsReported(t *testing.T) {
	pub := &recordingPublisher{}
	tracker := NewCameraHealthTracker(pub, nil, zap.NewNop())

	require.NoError(t, tracker.ObserveCapture(context.Background(), entity.NewFailureResult("3", 10, "connection refused")))
	require.Len(t, pub.events, 1)
	assert.Equal(t, "3", pub.events[0].CameraID)
}

func TestHealthTracker_CamerasAreIndependent(t *testing.T) {
	pub := &recordingPublisher{}
	tracker := NewCameraHealthTracker(pub, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, tracker.ObserveCapture(ctx, entity.NewFailureResult("1", 10, "timeout")))
	require.NoError(t, tracker.ObserveCapture(ctx, entity.NewSuccessResult("2", 10, []byte{0xff, 0xd8, 0})))

	assert.Len(t, pub.events, 1)
	_, seen := tracker.Healthy("3")
	assert.False(t, seen)
}

func TestHealthTracker_PublishErrorIsReturned(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	tracker := NewCameraHealthTracker(pub, nil, zap.NewNop())

	err := tracker.ObserveCapture(context.Background(), entity.NewFailureResult("1", 10, "timeout"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}

func TestHealthTracker_NoSinks(t *testing.T) {
	tracker := NewCameraHealthTracker(nil, nil, zap.NewNop())
	assert.NoError(t, tracker.ObserveCapture(context.Background(), entity.NewFailureResult("1", 10, "timeout")))
}

func TestHealthTracker_IgnoresUntrackedCameras(t *testing.T) {
	pub := &recordingPublisher{}
	notif := &recordingNotifier{}
	tracker := NewCameraHealthTracker(pub, notif, zap.NewNop(), "1", "2")
	ctx := context.Background()

	require.NoError(t, tracker.ObserveCapture(ctx, entity.NewFailureResult("made-up", 5, "404 Not Found")))
	require.NoError(t, tracker.ObserveCapture(ctx, entity.NewFailureResult("2", 2500, "timeout")))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "2", pub.events[0].CameraID)
	assert.Equal(t, []string{"2"}, notif.cameras)

	_, seen := tracker.Healthy("made-up")
	assert.False(t, seen)
}
