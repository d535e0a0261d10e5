package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthSource reports the watcher's current state for the /health endpoint.
type HealthSource interface {
	Health() Health
}

type Health struct {
	Status       string    `json:"status"`
	WatchedPaths int       `json:"watched_paths"`
	LastPoll     time.Time `json:"last_poll"`
}

// Server exposes /metrics and /health on a dedicated address. It is
// optional; the watcher runs fine without it.
type Server struct {
	addr   string
	source HealthSource
	server *http.Server
}

func NewServer(addr string, source HealthSource) *Server {
	return &Server{addr: addr, source: source}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := s.source.Health()
		w.Header().Set("Content-Type", "application/json")
		if health.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
