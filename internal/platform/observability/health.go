package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout     = 5 * time.Second
	readHeaderTimeout   = 10 * time.Second
	defaultReadyTimeout = 2 * time.Second

	pathLive    = "/healthz"
	pathReady   = "/readyz"
	pathMetrics = "/metrics"
)

// Pinger reports whether the thumbnail store can serve requests. For this bot
// that means the repository answers a ping and the thumbnail directory exists.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes liveness, readiness and Prometheus metrics over HTTP.
//
// Liveness only says the process is serving. Readiness says a /show_thumb,
// /del_thumb, photo or video message would reach storage right now; a failed
// or slow ping answers 503. Telegram connectivity is not part of readiness.
type Server struct {
	store        Pinger
	port         int
	readyTimeout time.Duration
	logger       *zerolog.Logger
}

// NewServer creates the server. A nil store makes readiness always succeed.
func NewServer(store Pinger, port int, logger *zerolog.Logger) *Server {
	return &Server{
		store:        store,
		port:         port,
		readyTimeout: defaultReadyTimeout,
		logger:       logger,
	}
}

// Handler returns the mux serving liveness, readiness and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(pathLive, s.handleLive)
	mux.HandleFunc(pathReady, s.handleReady)
	mux.Handle(pathMetrics, promhttp.Handler())

	return mux
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, "OK")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeStatus(w, http.StatusOK, "OK")

		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("readiness check failed")
		writeStatus(w, http.StatusServiceUnavailable, fmt.Sprintf("storage error: %v", err))

		return
	}

	writeStatus(w, http.StatusOK, "OK")
}

func writeStatus(w http.ResponseWriter, code int, body string) {
	w.WriteHeader(code)
	_, _ = fmt.Fprint(w, body)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("Health and metrics server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
