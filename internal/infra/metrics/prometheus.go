package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_requests_total",
		Help: "Total number of snapshot requests, by outcome (hit, ok, failed, busy, invalid)",
	}, []string{"outcome"})

	CaptureDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapshot_capture_duration_seconds",
		Help:    "Wall-clock duration of ffmpeg frame captures",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
	}, []string{"result"})

	CaptureFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_capture_failures_total",
		Help: "Total number of failed captures, by failure kind",
	}, []string{"kind"})

	AdmissionWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_admission_wait_seconds",
		Help:    "Time spent waiting for a capture slot, granted or not",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
	})

	CapturesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_captures_in_flight",
		Help: "Number of captures currently holding an admission slot",
	})

	ObserverErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_observer_errors_total",
		Help: "Total number of capture observer failures, by observer",
	}, []string{"observer"})
)
