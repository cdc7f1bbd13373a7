package observability

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server provides HTTP endpoints for observability.
type Server struct {
	server *http.Server
	addr   string
	ready  atomic.Bool
}

// NewServer creates a new observability HTTP server. It reports not ready
// until SetReady(true) is called.
func NewServer(addr string) *Server {
	s := &Server{addr: addr}

	mux := http.NewServeMux()

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetReady flips the readiness probe.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.addr).Msg("Starting observability HTTP server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Observability HTTP server error")
		}
	}()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down observability HTTP server")
	s.SetReady(false)
	return s.server.Shutdown(ctx)
}
