package port

import (
	"context"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
)

type HealthEventPublisher interface {
	PublishHealth(ctx context.Context, event entity.CameraHealthEvent) error
}
