package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ninespace/snapshot-api/internal/domain/port"
	"github.com/ninespace/snapshot-api/internal/infra/admission"
	"github.com/ninespace/snapshot-api/internal/infra/cache"
	"github.com/ninespace/snapshot-api/internal/infra/config"
	"github.com/ninespace/snapshot-api/internal/infra/email"
	"github.com/ninespace/snapshot-api/internal/infra/ffmpeg"
	"github.com/ninespace/snapshot-api/internal/infra/httpapi"
	"github.com/ninespace/snapshot-api/internal/infra/metrics"
	"github.com/ninespace/snapshot-api/internal/infra/postgres"
	"github.com/ninespace/snapshot-api/internal/infra/rabbitmq"
	"github.com/ninespace/snapshot-api/internal/infra/rtsp"
	"github.com/ninespace/snapshot-api/internal/infra/scheduler"
	"github.com/ninespace/snapshot-api/internal/infra/tracing"
	"github.com/ninespace/snapshot-api/internal/usecase"
	"github.com/ninespace/snapshot-api/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting snapshot-api",
		zap.String("nvr_host", cfg.NVRHost),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Int("health_timeout_ms", cfg.HealthTimeoutMs),
		zap.Int("snapshot_cache_ms", cfg.SnapshotCacheMs),
		zap.Int("queue_timeout_ms", cfg.QueueTimeoutMs),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint, cfg.TraceSampleRatio)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	gate, err := admission.NewGate(cfg.MaxConcurrency)
	fatalOnErr(err, "create admission gate")

	grabber := ffmpeg.NewGrabber(ffmpeg.GrabberConfig{
		Binary:        cfg.FFmpegPath,
		JPEGQuality:   cfg.JPEGQuality,
		VideoFilter:   cfg.FFmpegVideoFilter,
		RTSPTransport: cfg.RTSPTransport,
		TimeoutFlag:   cfg.FFmpegTimeoutFlag,
	}, log)

	targets := rtsp.Builder{
		Host:     cfg.NVRHost,
		Port:     cfg.RTSPPort,
		Username: cfg.Username,
		Password: cfg.Password,
		Subtype:  cfg.Subtype,
	}

	var (
		observers []port.CaptureObserver
		history   port.CaptureHistory
	)

	// Capture log (optional)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		fatalOnErr(err, "connect to postgres")
		defer pool.Close()

		repo := postgres.NewCaptureLogRepository(pool)
		fatalOnErr(repo.EnsureSchema(ctx), "ensure capture log schema")
		observers = append(observers, repo)
		history = repo
	}

	// Health events (optional)
	var (
		healthPub port.HealthEventPublisher
		rmqConn   *amqp.Connection
	)
	if cfg.RabbitMQURL != "" {
		rmqConn, err = amqp.Dial(cfg.RabbitMQURL)
		fatalOnErr(err, "connect to rabbitmq")
		defer rmqConn.Close()

		pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
		fatalOnErr(err, "create rabbitmq publisher")
		defer pub.Close()
		healthPub = rabbitmq.NewHealthPublisher(pub)
	}

	var notifier port.FailureNotifier
	if cfg.SMTPHost != "" {
		notifier = email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.NotificationTo, log)
	}

	if healthPub != nil || notifier != nil {
		observers = append(observers, usecase.NewCameraHealthTracker(healthPub, notifier, log, cfg.TrackedCameras()...))
	}

	// Use case
	uc := usecase.NewGetSnapshotUseCase(
		cache.NewResultCache(cfg.CacheWindow()),
		gate, grabber, targets,
		log,
		usecase.GetSnapshotConfig{
			QueueTimeout:   cfg.QueueTimeout(),
			CaptureTimeout: cfg.HealthTimeout(),
		},
		observers...,
	)
	defer uc.Close()

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, gate, log)

	// Prober (optional)
	var prober *scheduler.Prober
	if cfg.ProbeSchedule != "" {
		prober, err = scheduler.NewProber(cfg.ProbeSchedule, cfg.ProbeCameras, uc, log)
		fatalOnErr(err, "create prober")
		prober.Start()
	}

	// Probe requests from the broker (optional)
	consumerDone := make(chan struct{})
	if cfg.ProbeQueue != "" {
		consumer, err := rabbitmq.NewConsumer(rmqConn, rabbitmq.ConsumerConfig{
			Exchange:    cfg.RabbitMQExchange,
			Queue:       cfg.ProbeQueue,
			WorkerCount: cfg.ProbeWorkers,
		}, uc, log)
		fatalOnErr(err, "create probe consumer")
		defer consumer.Close()

		go func() {
			defer close(consumerDone)
			if err := consumer.Start(ctx); err != nil {
				log.Error("probe consumer error", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	app := httpapi.NewApp(httpapi.NewHandler(uc, history, log))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		log.Info("http server starting", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()
	if prober != nil {
		prober.Stop(shutdownCtx)
	}
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http server shutdown", zap.Error(err))
	}
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("snapshot-api stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
