package port

import "github.com/ninespace/snapshot-api/internal/domain/entity"

type ResultCache interface {
	Get(cameraID string) (entity.SnapshotResult, bool)
	Put(cameraID string, result entity.SnapshotResult)
}
