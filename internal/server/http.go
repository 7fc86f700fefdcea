// Package server exposes the CV pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"cvtailor/internal/ai"
	"cvtailor/internal/config"
	apperrors "cvtailor/internal/errors"
	"cvtailor/internal/observability"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Server wires the middleware chain and handlers around the shared
// pipeline service. Handlers are stateless; per-request state lives in
// the request context.
type Server struct {
	cfg        config.ServerConfig
	svc        *ai.Service
	logger     *apperrors.Logger
	metrics    *observability.Metrics
	limiters   *limiterManager
	httpServer *http.Server

	startTime    time.Time
	requestCount atomic.Int64
}

func New(cfg config.ServerConfig, svc *ai.Service, logger *apperrors.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		cfg:       cfg,
		svc:       svc,
		logger:    logger,
		metrics:   metrics,
		startTime: time.Now(),
	}
	if cfg.RateLimit.Enabled {
		s.limiters = newLimiterManager(cfg.RateLimit)
	}

	handler := otelhttp.NewHandler(s.routes(), "cvtailor")
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return apperrors.NewInternalError("SERVER_FAILED", "http server stopped unexpectedly", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if s.limiters != nil {
		s.limiters.close()
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.NewInternalError("SHUTDOWN_FAILED", "graceful shutdown failed", err)
	}
	return nil
}

// chain applies the standard middleware stack to an endpoint handler.
func (s *Server) chain(h http.HandlerFunc) http.Handler {
	return s.withRequestID(s.withLogging(s.withRateLimit(s.withAuth(s.withSizeLimit(h)))))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requestCount.Add(1)
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", r.Context().Value(requestIDKey),
		)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiters != nil && !s.limiters.allow(clientKey(r)) {
			s.metrics.RecordRateLimitHit(r.Context())
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: errorBody{
				Code:    "RATE_LIMITED",
				Message: "too many requests",
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.cfg.APIKeys) > 0 {
			provided := r.Header.Get("X-API-Key")
			valid := false
			for _, key := range s.cfg.APIKeys {
				if provided == key {
					valid = true
					break
				}
			}
			if !valid {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorBody{
					Code:    "UNAUTHORIZED",
					Message: "missing or invalid API key",
				}})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withSizeLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}
