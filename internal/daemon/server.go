package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/lastupdated/internal/logfields"
	"git.home.luguber.info/inful/lastupdated/internal/metrics"
)

// MetricsServer serves /metrics and /healthz while the daemon runs.
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer creates the HTTP server for the given listen address.
func NewMetricsServer(addr string, registry *prom.Registry) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background.
func (s *MetricsServer) Start() {
	go func() {
		slog.Info("Metrics server listening", slog.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *MetricsServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Metrics server shutdown failed", logfields.Error(err))
	}
}
