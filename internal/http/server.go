// Package http exposes the dashboard and transaction operations as a JSON
// API. Handlers stay thin: parsing and status mapping live here, all
// behavior lives in the dashboard service.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"buckaroo/internal/log"
	"buckaroo/internal/middleware/ratelimit"
	"buckaroo/internal/middleware/security"
	"buckaroo/internal/middleware/trace"
	"buckaroo/internal/services"
)

type Server struct {
	http.Server

	dashboard *services.DashboardService
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, dashboard *services.DashboardService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		dashboard: dashboard,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("PUT /api/networth", s.handleSetNetworth)

	ipExtractor := security.NewClientIPExtractor()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(ipExtractor.ExtractClientIP)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(ipExtractor.ExtractClientIP, nil)(handler)
	handler = tracer.Middleware(handler)
	handler = headers.Middleware(handler)
	if logger != nil {
		handler = log.Middleware(logger)(handler)
	}
	s.Handler = handler

	return s
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
