package observability

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "cvtailor/internal/errors"
)

// metricsServer exposes the prometheus scrape endpoint on its own
// listener, separate from the API port.
type metricsServer struct {
	server *http.Server
	logger *apperrors.Logger
}

func newMetricsServer(addr string, registry *promclient.Registry, logger *apperrors.Logger) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &metricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

func (s *metricsServer) start() {
	go func() {
		s.logger.Info("metrics server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.LogError(err, "metrics server stopped unexpectedly")
		}
	}()
}

func (s *metricsServer) stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
