// Package server exposes a store.Store over a json-server compatible HTTP API,
// so the list can run against a local backend:
//
//	GET  /users?_page=&_limit=&_sort=&_order=   one page, total in X-Total-Count
//	POST /users                                 create a record
//	GET  /healthz                               liveness
//	GET  /metrics                               Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/store"
	"github.com/rshade/recordlist/pkg/version"
)

// DefaultAddr matches the port json-server listens on.
const DefaultAddr = ":3001"

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server serves one store.
type Server struct {
	store   store.Store
	metrics *Metrics
	logger  zerolog.Logger

	httpServer *http.Server
}

// New creates a server for s listening on addr.
func New(s store.Store, addr string, logger zerolog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &Server{
		store:   s,
		metrics: NewMetrics(),
		logger:  logging.ComponentLogger(logger, "server"),
	}
	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return srv
}

// Metrics returns the server collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /users", s.metrics.instrument("/users", http.HandlerFunc(s.handleList)))
	mux.Handle("POST /users", s.metrics.instrument("/users", http.HandlerFunc(s.handleCreate)))
	mux.Handle("OPTIONS /users", s.metrics.instrument("/users", http.HandlerFunc(handlePreflight)))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return withCORS(s.withRequestLogging(mux))
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info().
		Str("operation", "serve").
		Str("addr", l.Addr().String()).
		Msg("API server listening")
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving API: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Str("operation", "shutdown").Msg("API server stopping")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		traceID := r.Header.Get("X-Request-ID")
		if traceID == "" {
			traceID = uuid.Must(uuid.NewV7()).String()
		}
		ctx = logging.ContextWithTraceID(ctx, traceID)
		ctx = s.logger.WithContext(ctx)
		w.Header().Set("X-Request-ID", traceID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logging.FromContext(ctx).Debug().
			Ctx(ctx).
			Str("operation", "request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Expose-Headers", HeaderTotalCount+", "+version.HeaderServerVersion)
		h.Set(version.HeaderServerVersion, version.GetVersion())
		next.ServeHTTP(w, r)
	})
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	w.WriteHeader(http.StatusNoContent)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
