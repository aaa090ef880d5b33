// Package api exposes the operational HTTP surface: health and metrics.
// Search targets are configured through the targets file, not over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"olxradar/internal/storage"
)

// Server holds the dependencies for the ops HTTP server.
type Server struct {
	httpServer *http.Server
	store      storage.DedupStore
	logger     *zap.Logger
	port       string
}

func NewServer(port string, store storage.DedupStore, logger *zap.Logger) *Server {
	s := &Server{store: store, logger: logger, port: port}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.handleHealthCheck)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"store": "healthy"}
	code := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health check failed for dedup store", zap.Error(err))
		status["store"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	body, _ := json.Marshal(status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
