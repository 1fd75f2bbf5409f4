package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hopper/internal/config"
	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/queue"
)

const refreshInterval = 10 * time.Second

// Server exposes /metrics and /healthz and keeps the gauge family in sync
// with the journal while running. A nil Server is safe to start and stop,
// which is how a disabled [metrics] section is represented.
type Server struct {
	bind   string
	logger *slog.Logger
	store  *journal.Store
	depth  func() int

	listener net.Listener
	server   *http.Server
	done     chan struct{}
}

// NewServer builds the scrape endpoint. It returns nil when the metrics
// section is disabled or no bind address is configured.
func NewServer(cfg *config.Config, store *journal.Store, queueDepth func() int, logger *slog.Logger) *Server {
	if cfg == nil || !cfg.Metrics.Enabled {
		return nil
	}
	bind := strings.TrimSpace(cfg.Metrics.Bind)
	if bind == "" {
		return nil
	}

	srv := &Server{
		bind:   bind,
		logger: logger,
		store:  store,
		depth:  queueDepth,
		done:   make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Start binds the listener and begins serving scrapes.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	s.listener = listener

	s.refresh(ctx)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("metrics server error", logging.Error(err))
		}
	}()

	go s.refreshLoop(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("metrics server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the endpoint down and halts the gauge refresher.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address, useful when the config asked for port 0.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Server) refresh(ctx context.Context) {
	if s.depth != nil {
		SetQueueDepth(s.depth())
	}
	if s.store == nil {
		return
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.log().Warn("journal stats refresh failed", logging.Error(err))
		return
	}
	for _, status := range queue.Statuses() {
		SetJournalEntries(string(status), stats[status])
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "metrics-server"))
	}
	return logging.NewNop()
}
