package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
}

// NewPublisher opens a channel and declares exchange as a durable topic exchange.
func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

// HealthPublisher publishes camera up/down transitions under
// camera.health.up and camera.health.down.
type HealthPublisher struct {
	pub *Publisher
}

func NewHealthPublisher(pub *Publisher) *HealthPublisher {
	return &HealthPublisher{pub: pub}
}

func (hp *HealthPublisher) PublishHealth(ctx context.Context, event entity.CameraHealthEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal health event: %w", err)
	}
	if err := hp.pub.publish(ctx, event.RoutingKey(), body); err != nil {
		return fmt.Errorf("publish health event: %w", err)
	}
	return nil
}
