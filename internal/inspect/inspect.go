// Package inspect serves the demo and the runtime's metrics over HTTP.
//
//	GET  /healthz               liveness
//	GET  /metrics               Prometheus metrics
//	GET  /debug/demo            demo snapshot as JSON
//	POST /debug/demo/{action}   run a demo action (argument in ?arg=)
//
// The runtime is single-threaded, so every request touching the demo holds
// the server's mutex.
package inspect

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reactor/internal/demo"
	"github.com/vango-dev/reactor/internal/errors"
)

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 5 * time.Second

// NodeGauge receives the live node count after every action.
// *telemetry.Metrics implements it.
type NodeGauge interface {
	SetLiveNodes(n int)
}

// Server is the inspector.
type Server struct {
	mu     sync.Mutex
	app    *demo.App
	gauge  NodeGauge
	logger *slog.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNodeGauge reports the live node count after every action.
func WithNodeGauge(g NodeGauge) Option {
	return func(s *Server) {
		s.gauge = g
	}
}

// New creates the inspector for app. Metrics are served from gatherer;
// nil serves the default registry.
func New(app *demo.App, gatherer prometheus.Gatherer, opts ...Option) *Server {
	s := &Server{
		app:    app,
		logger: slog.Default().With("component", "inspect"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/debug/demo", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Post("/{action}", s.handleAction)
	})
	s.router = r
	s.updateGauge()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.app.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

// actionError is the body of a failed action.
type actionError struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Category string `json:"category,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	arg := r.URL.Query().Get("arg")

	s.mu.Lock()
	err := s.app.Do(action, arg)
	s.updateGauge()
	snap := s.app.Snapshot()
	s.mu.Unlock()

	if err != nil {
		status := http.StatusUnprocessableEntity
		if stderrors.Is(err, demo.ErrUnknownAction) {
			status = http.StatusNotFound
		}
		body := actionError{Error: err.Error(), Category: string(errors.CategoryOf(err))}
		var e *errors.Error
		if stderrors.As(err, &e) {
			body.Code = e.Code
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) updateGauge() {
	if s.gauge != nil {
		s.gauge.SetLiveNodes(s.app.Runtime().LiveNodes())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
