package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ProbeRoutingKey is the routing key probe requests are bound under.
const ProbeRoutingKey = "camera.probe"

var errMalformedRequest = errors.New("malformed probe request")

type SnapshotGetter interface {
	Execute(ctx context.Context, cameraID string) entity.SnapshotResult
}

// ProbeRequest asks the service to refresh one camera. The result is not
// replied to; it lands in the cache and reaches the capture observers.
type ProbeRequest struct {
	CameraID string `json:"camera_id"`
}

type Consumer struct {
	channel     *amqp.Channel
	queue       string
	workerCount int
	snapshots   SnapshotGetter
	logger      *zap.Logger
	wg          sync.WaitGroup
}

type ConsumerConfig struct {
	Exchange    string
	Queue       string
	WorkerCount int
}

// NewConsumer declares queue, binds it to exchange under ProbeRoutingKey and
// limits unacked deliveries to the worker count.
func NewConsumer(conn *amqp.Connection, cfg ConsumerConfig, snapshots SnapshotGetter, logger *zap.Logger) (*Consumer, error) {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	if err := ch.QueueBind(cfg.Queue, ProbeRoutingKey, cfg.Exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("bind probe queue: %w", err)
	}
	if err := ch.Qos(cfg.WorkerCount, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		channel:     ch,
		queue:       cfg.Queue,
		workerCount: cfg.WorkerCount,
		snapshots:   snapshots,
		logger:      logger,
	}, nil
}

// Start consumes until ctx is cancelled, then waits for in-flight probes.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue,
		"",
		false, // autoAck=false
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("starting probe workers",
		zap.Int("workers", c.workerCount),
		zap.String("queue", c.queue),
	)

	for i := 0; i < c.workerCount; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, deliveries)
	}

	<-ctx.Done()
	c.logger.Info("context cancelled, waiting for probe workers to finish")
	c.wg.Wait()
	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.With(zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			c.processDelivery(ctx, d, log)
		}
	}
}

func (c *Consumer) processDelivery(ctx context.Context, d amqp.Delivery, log *zap.Logger) {
	res, err := c.handle(ctx, d.Body)
	if err != nil {
		log.Warn("dropping probe request",
			zap.Error(err),
			zap.Uint64("delivery_tag", d.DeliveryTag),
		)
		_ = d.Nack(false, false)
		return
	}

	log.Debug("probe request served",
		zap.String("camera_id", res.CameraID),
		zap.Bool("ok", res.OK),
		zap.String("detail", res.Detail),
	)
	_ = d.Ack(false)
}

// handle runs one probe. A failed capture is still a served request; only an
// unreadable message is an error.
func (c *Consumer) handle(ctx context.Context, body []byte) (entity.SnapshotResult, error) {
	var req ProbeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return entity.SnapshotResult{}, fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	if req.CameraID == "" {
		return entity.SnapshotResult{}, fmt.Errorf("%w: camera_id is required", errMalformedRequest)
	}
	return c.snapshots.Execute(ctx, req.CameraID), nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
