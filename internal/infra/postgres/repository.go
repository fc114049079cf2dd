package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ninespace/snapshot-api/internal/domain/entity"
)

const schema = `
	CREATE TABLE IF NOT EXISTS capture_log (
		id          UUID PRIMARY KEY,
		camera_id   TEXT        NOT NULL,
		ok          BOOLEAN     NOT NULL,
		latency_ms  BIGINT      NOT NULL,
		detail      TEXT        NOT NULL,
		image_bytes INTEGER     NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS capture_log_camera_time_idx
		ON capture_log (camera_id, captured_at DESC);`

// CaptureLogRepository stores one row per capture attempt. Images are not stored.
type CaptureLogRepository struct {
	pool *pgxpool.Pool
}

func NewCaptureLogRepository(pool *pgxpool.Pool) *CaptureLogRepository {
	return &CaptureLogRepository{pool: pool}
}

func (r *CaptureLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure capture_log schema: %w", err)
	}
	return nil
}

func (r *CaptureLogRepository) ObserveCapture(ctx context.Context, result entity.SnapshotResult) error {
	return r.Insert(ctx, entity.NewCaptureRecord(result))
}

func (r *CaptureLogRepository) Insert(ctx context.Context, rec entity.CaptureRecord) error {
	query := `
		INSERT INTO capture_log (
			id, camera_id, ok, latency_ms, detail, image_bytes, captured_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.CameraID, rec.OK, rec.LatencyMs,
		rec.Detail, rec.ImageBytes, rec.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("insert capture record: %w", err)
	}
	return nil
}

// Recent returns the latest records for a camera, newest first.
func (r *CaptureLogRepository) Recent(ctx context.Context, cameraID string, limit int) ([]entity.CaptureRecord, error) {
	query := `
		SELECT id, camera_id, ok, latency_ms, detail, image_bytes, captured_at
		FROM capture_log
		WHERE camera_id=$1
		ORDER BY captured_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cameraID, limit)
	if err != nil {
		return nil, fmt.Errorf("query capture log: %w", err)
	}
	defer rows.Close()

	records := make([]entity.CaptureRecord, 0, limit)
	for rows.Next() {
		var rec entity.CaptureRecord
		if err := rows.Scan(
			&rec.ID, &rec.CameraID, &rec.OK, &rec.LatencyMs,
			&rec.Detail, &rec.ImageBytes, &rec.CapturedAt,
		); err != nil {
			return nil, fmt.Errorf("scan capture record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capture log: %w", err)
	}
	return records, nil
}
