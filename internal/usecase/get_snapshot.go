package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ninespace/snapshot-api/internal/domain/entity"
	"github.com/ninespace/snapshot-api/internal/domain/port"
	"github.com/ninespace/snapshot-api/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultObserverTimeout = 5 * time.Second
	defaultObserverQueue   = 256
)

// GetSnapshotUseCase serves one camera snapshot per call:
// cache check, admission, capture, cache update. It always returns a result;
// failures are carried in SnapshotResult.OK and Detail.
type GetSnapshotUseCase struct {
	cache     port.ResultCache
	gate      port.AdmissionGate
	capturer  port.FrameCapturer
	targets   port.TargetResolver
	observers []port.CaptureObserver
	logger    *zap.Logger

	queueTimeout    time.Duration
	captureTimeout  time.Duration
	observerTimeout time.Duration

	// mu orders cache writes with observer delivery, so observers see captures
	// of a camera in the same order the cache stored them.
	mu       sync.Mutex
	captures chan observedCapture
	closed   bool
	done     chan struct{}
}

type observedCapture struct {
	ctx    context.Context
	result entity.SnapshotResult
	log    *zap.Logger
}

type GetSnapshotConfig struct {
	QueueTimeout    time.Duration
	CaptureTimeout  time.Duration
	ObserverTimeout time.Duration
	// ObserverQueue bounds pending notifications; beyond it they are dropped.
	ObserverQueue int
}

func NewGetSnapshotUseCase(
	cache port.ResultCache,
	gate port.AdmissionGate,
	capturer port.FrameCapturer,
	targets port.TargetResolver,
	logger *zap.Logger,
	cfg GetSnapshotConfig,
	observers ...port.CaptureObserver,
) *GetSnapshotUseCase {
	if cfg.ObserverTimeout <= 0 {
		cfg.ObserverTimeout = defaultObserverTimeout
	}
	if cfg.ObserverQueue <= 0 {
		cfg.ObserverQueue = defaultObserverQueue
	}
	uc := &GetSnapshotUseCase{
		cache:           cache,
		gate:            gate,
		capturer:        capturer,
		targets:         targets,
		observers:       observers,
		logger:          logger,
		queueTimeout:    cfg.QueueTimeout,
		captureTimeout:  cfg.CaptureTimeout,
		observerTimeout: cfg.ObserverTimeout,
		done:            make(chan struct{}),
	}
	if len(observers) == 0 {
		close(uc.done)
		return uc
	}
	uc.captures = make(chan observedCapture, cfg.ObserverQueue)
	go uc.deliver()
	return uc
}

func (uc *GetSnapshotUseCase) Execute(ctx context.Context, cameraID string) entity.SnapshotResult {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "GetSnapshotUseCase.Execute")
	defer span.End()
	cameraID = strings.TrimSpace(cameraID)
	span.SetAttributes(attribute.String("camera.id", cameraID))

	if cameraID == "" {
		metrics.SnapshotRequestsTotal.WithLabelValues("invalid").Inc()
		return entity.NewFailureResult(cameraID, 0, entity.DetailInvalidCamera)
	}

	if cached, ok := uc.cache.Get(cameraID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		metrics.SnapshotRequestsTotal.WithLabelValues("hit").Inc()
		return cached
	}

	log := uc.logger.With(zap.String("camera_id", cameraID))

	waitStart := time.Now()
	_, spanAdm := tracer.Start(ctx, "admission")
	slot, err := uc.gate.Acquire(ctx, uc.queueTimeout)
	spanAdm.End()
	metrics.AdmissionWait.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		log.Warn("capture rejected, no free slot", zap.Duration("queue_timeout", uc.queueTimeout))
		metrics.SnapshotRequestsTotal.WithLabelValues("busy").Inc()
		return entity.NewBusyResult(cameraID)
	}

	result := uc.captureWithSlot(ctx, cameraID, slot, log)

	uc.record(ctx, result, log)

	if result.OK {
		metrics.SnapshotRequestsTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.SnapshotRequestsTotal.WithLabelValues("failed").Inc()
	}
	span.SetAttributes(
		attribute.Bool("snapshot.ok", result.OK),
		attribute.Int64("snapshot.latency_ms", result.LatencyMs),
	)
	return result
}

// captureWithSlot holds slot for exactly one capture and releases it on every
// path out, including a panicking capturer. The capture runs detached from
// ctx cancellation so a disconnecting client still warms the cache.
func (uc *GetSnapshotUseCase) captureWithSlot(
	ctx context.Context,
	cameraID string,
	slot port.Slot,
	log *zap.Logger,
) (result entity.SnapshotResult) {
	metrics.CapturesInFlight.Inc()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("capture panicked", zap.Any("panic", r))
			metrics.CaptureFailuresTotal.WithLabelValues("panic").Inc()
			result = entity.NewFailureResult(cameraID, time.Since(start).Milliseconds(), "exception")
		}
		metrics.CapturesInFlight.Dec()
		slot.Release()
	}()

	captureCtx, span := otel.Tracer("usecase").Start(context.WithoutCancel(ctx), "capture")
	defer span.End()

	img, err := uc.capturer.Capture(captureCtx, uc.targets.Target(cameraID), uc.captureTimeout)
	elapsed := time.Since(start)
	latencyMs := elapsed.Milliseconds()

	if err == nil && len(img) == 0 {
		err = entity.NewCaptureError(entity.CaptureNoFrameDecoded, "no frame decoded")
	}
	if err != nil {
		metrics.CaptureDuration.WithLabelValues("failed").Observe(elapsed.Seconds())
		metrics.CaptureFailuresTotal.WithLabelValues(entity.FailureKind(err)).Inc()
		span.SetAttributes(attribute.String("capture.failure", entity.FailureKind(err)))
		detail := entity.FailureDetail(err)
		log.Warn("capture failed",
			zap.String("kind", entity.FailureKind(err)),
			zap.String("detail", detail),
			zap.Int64("latency_ms", latencyMs),
		)
		return entity.NewFailureResult(cameraID, latencyMs, detail)
	}

	metrics.CaptureDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
	log.Info("snapshot captured",
		zap.Int("bytes", len(img)),
		zap.Int64("latency_ms", latencyMs),
	)
	return entity.NewSuccessResult(cameraID, latencyMs, img)
}

// record stores result in the cache and queues it for the observers. It never
// blocks on observers: a full queue drops the notification.
func (uc *GetSnapshotUseCase) record(ctx context.Context, result entity.SnapshotResult, log *zap.Logger) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.cache.Put(result.CameraID, result)
	if uc.captures == nil || uc.closed {
		return
	}
	select {
	case uc.captures <- observedCapture{ctx: context.WithoutCancel(ctx), result: result, log: log}:
	default:
		metrics.ObserverErrorsTotal.WithLabelValues("queue_full").Inc()
		log.Warn("observer queue full, dropping capture notification")
	}
}

// deliver feeds queued captures to the observers one at a time.
func (uc *GetSnapshotUseCase) deliver() {
	defer close(uc.done)
	for c := range uc.captures {
		octx, cancel := context.WithTimeout(c.ctx, uc.observerTimeout)
		for _, o := range uc.observers {
			if err := o.ObserveCapture(octx, c.result); err != nil {
				name := fmt.Sprintf("%T", o)
				metrics.ObserverErrorsTotal.WithLabelValues(name).Inc()
				c.log.Warn("capture observer failed", zap.String("observer", name), zap.Error(err))
			}
		}
		cancel()
	}
}

// Close stops accepting notifications and waits for queued ones to be
// delivered. Safe to call more than once.
func (uc *GetSnapshotUseCase) Close() {
	uc.mu.Lock()
	if !uc.closed {
		uc.closed = true
		if uc.captures != nil {
			close(uc.captures)
		}
	}
	uc.mu.Unlock()
	<-uc.done
}
