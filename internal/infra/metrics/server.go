package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// GateStats is the admission gate view reported by /healthz.
type GateStats interface {
	Capacity() int
	InFlight() int
}

type healthStatus struct {
	Status           string `json:"status"`
	CapturesInFlight int    `json:"captures_in_flight"`
	MaxConcurrency   int    `json:"max_concurrency"`
}

// StartMetricsServer serves the snapshot metrics and /healthz on port, apart
// from the public API so scrapes never compete with camera requests. The
// server shuts down when ctx is done.
func StartMetricsServer(ctx context.Context, port int, gate GateStats, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewHandler(gate),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv
}

// NewHandler exposes /metrics and /healthz. With a gate, /healthz answers JSON
// with the current capture load; a saturated gate is still healthy.
func NewHandler(gate GateStats) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if gate == nil {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthStatus{
			Status:           "ok",
			CapturesInFlight: gate.InFlight(),
			MaxConcurrency:   gate.Capacity(),
		})
	})
	return mux
}
