// Package http is an in-memory implementation of the remote transaction and
// auth API, used for local development and end-to-end tests of the client.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// Server embeds http.Server with the mock API routes and middleware.
type Server struct {
	http.Server
	backend  *Backend
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	draining     atomic.Bool
	shutdownOnce sync.Once
}

// Options tune the middleware stack. The zero value uses the defaults.
type Options struct {
	RateLimit ratelimit.Config
	Headers   *security.HeadersConfig
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, backend *Backend, logger *applog.Logger, opts Options) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if backend == nil {
		backend = NewBackend()
	}
	rlCfg := opts.RateLimit
	if rlCfg.RequestsPerMinute <= 0 {
		rlCfg = ratelimit.DefaultConfig()
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	s := &Server{
		backend:  backend,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(rlCfg),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	api := http.NewServeMux()
	api.HandleFunc("POST /login", s.handleLogin)
	api.HandleFunc("POST /logout", s.handleLogout)
	api.HandleFunc("GET /auth/validate", s.handleCurrentUser)
	api.HandleFunc("GET /auth/me", s.handleCurrentUser)
	api.HandleFunc("GET /users/{userID}/transactions", s.handleListTransactions)
	api.HandleFunc("POST /users/{userID}/transactions", s.handleCreateTransaction)
	api.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found")
	})

	var handler http.Handler = api
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = s.detector.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("/", handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Backend exposes the in-memory state, mainly for seeding.
func (s *Server) Backend() *Backend { return s.backend }

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// Shutdown stops accepting requests, drains in-flight ones and stops the
// limiter's cleanup goroutine. Only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.draining.Store(true)
		s.limiter.Stop()
		s.logger.InfoContext(ctx, "Shutting down", applog.FieldOperation, applog.OpShutdown)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports 503 once shutdown has begun.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	if s.draining.Load() {
		status, code = "draining", http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, map[string]any{
		"status": status,
		"checks": map[string]any{
			"sessions":       s.backend.Sessions(),
			"active_clients": s.limiter.ActiveClients(),
		},
	})
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of API requests", traceMetrics.TotalRequests)
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rl.Rejected)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rl.ClientCount)
	metric("suspicious_requests_total", "counter", "Suspicious requests detected", sec.SuspiciousRequests)
	metric("blocked_requests_total", "counter", "Requests blocked by method", sec.BlockedRequests)
	metric("open_sessions", "gauge", "Sessions currently open", s.backend.Sessions())
	metric("uptime_seconds", "gauge", "Server uptime in seconds", int64(time.Since(s.started).Seconds()))
}
