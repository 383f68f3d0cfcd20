package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/metrics"
	"github.com/muurk/sonoslink/internal/publish"
	"github.com/muurk/sonoslink/internal/upnp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Config holds the exporter configuration
type Config struct {
	Listen   string               // e.g. ":9464"
	Discover metrics.DiscoverFunc // Used by /groups
	Timeout  time.Duration        // Discovery timeout per request
	Registry *prometheus.Registry // Served on /metrics
}

// Server serves metrics and the current zone groups over HTTP
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   net.Listener
}

// New creates a new Server instance
func New(config *Config) *Server {
	s := &Server{config: config}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the exporter's routes:
//
//	/metrics  Prometheus exposition
//	/groups   zone groups as JSON, from a fresh discovery
//	/healthz  liveness
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(s.config.Registry))
	mux.HandleFunc("/groups", s.handleGroups)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	groups, err := s.config.Discover(s.config.Timeout)
	if err != nil {
		logging.Warn("Discovery failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		status := http.StatusBadGateway
		if upnp.IsNoDeviceFound(err) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, upnp.ShortMessage(err), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(publish.Payloads(groups)); err != nil {
		logging.Error("Failed to write groups", zap.Error(err))
	}
}

// Start listens on the configured address and blocks until a shutdown signal
// or a server error
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.listener = listener

	logging.Info("Exporter listening", zap.String("addr", listener.Addr().String()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping exporter...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the listening address once Start has bound it
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down exporter...")
	err := s.httpServer.Shutdown(ctx)
	logging.Sync()
	return err
}
