package scheduler

import (
	"context"
	"fmt"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type SnapshotGetter interface {
	Execute(ctx context.Context, cameraID string) entity.SnapshotResult
}

// Prober refreshes a fixed set of cameras on a cron schedule. Probes go
// through the same cache and admission gate as client requests, so a probe
// landing inside the freshness window is a cache hit and a probe that finds
// the gate full is simply skipped.
type Prober struct {
	cron      *cron.Cron
	snapshots SnapshotGetter
	cameras   []string
	logger    *zap.Logger
}

func NewProber(schedule string, cameras []string, snapshots SnapshotGetter, logger *zap.Logger) (*Prober, error) {
	p := &Prober{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		snapshots: snapshots,
		cameras:   cameras,
		logger:    logger,
	}
	if _, err := p.cron.AddFunc(schedule, func() { p.ProbeAll(context.Background()) }); err != nil {
		return nil, fmt.Errorf("parse probe schedule %q: %w", schedule, err)
	}
	return p, nil
}

func (p *Prober) Start() {
	p.logger.Info("camera prober starting", zap.Strings("cameras", p.cameras))
	p.cron.Start()
}

// Stop prevents new runs and waits for a running probe to finish or ctx to end.
func (p *Prober) Stop(ctx context.Context) {
	select {
	case <-p.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// ProbeAll runs one snapshot per configured camera, sequentially.
func (p *Prober) ProbeAll(ctx context.Context) []entity.SnapshotResult {
	results := make([]entity.SnapshotResult, 0, len(p.cameras))
	for _, id := range p.cameras {
		res := p.snapshots.Execute(ctx, id)
		p.logger.Debug("camera probed",
			zap.String("camera_id", id),
			zap.Bool("ok", res.OK),
			zap.Int64("latency_ms", res.LatencyMs),
			zap.String("detail", res.Detail),
		)
		results = append(results, res)
	}
	return results
}
