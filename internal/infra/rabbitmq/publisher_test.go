package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

func TestHealthPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	rmqContainer, err := tcrabbitmq.Run(ctx, "rabbitmq:3.12-management-alpine")
	require.NoError(t, err)
	defer rmqContainer.Terminate(ctx)

	rmqURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	conn, err := amqp.Dial(rmqURL)
	require.NoError(t, err)
	defer conn.Close()

	pub, err := NewPublisher(conn, "snapshot.health")
	require.NoError(t, err)
	defer pub.Close()

	// Bind a queue to down events only.
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()
	q, err := ch.QueueDeclare("camera.down", false, true, false, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "camera.health.down", "snapshot.health", false, nil))

	hp := NewHealthPublisher(pub)
	require.NoError(t, hp.PublishHealth(ctx, entity.NewCameraHealthEvent(entity.NewSuccessResult("1", 10, []byte{0xff, 0xd8, 0}))))
	down := entity.NewCameraHealthEvent(entity.NewFailureResult("1", 2500, "timeout"))
	require.NoError(t, hp.PublishHealth(ctx, down))

	var got entity.CameraHealthEvent
	require.Eventually(t, func() bool {
		d, ok, err := ch.Get(q.Name, true)
		if err != nil || !ok {
			return false
		}
		return json.Unmarshal(d.Body, &got) == nil
	}, 10*time.Second, 100*time.Millisecond)

	assert.Equal(t, down.ID, got.ID)
	assert.False(t, got.Healthy)
	assert.Equal(t, "timeout", got.Detail)

	_, ok, err := ch.Get(q.Name, true)
	require.NoError(t, err)
	assert.False(t, ok, "up events are not routed to the down queue")
}
