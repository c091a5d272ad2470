// Package server exposes a single driven session over WebSocket. Clients
// send command messages and receive a snapshot message whenever the
// session changes; every connection observes the same session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/piblackjack/internal/auth"
	"github.com/lox/piblackjack/internal/driver"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	driver      *driver.Driver
	clock       quartz.Clock
	validator   auth.Validator
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// Option configures a Server
type Option func(*Server)

// WithClock sets the clock used to timestamp outgoing messages.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithValidator requires connections to present a token accepted by v.
func WithValidator(v auth.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// NewServer creates a new WebSocket server for d
func NewServer(d *driver.Driver, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		driver:    d,
		clock:     quartz.NewReal(),
		validator: auth.NewNoopValidator(),
		upgrader: websocket.Upgrader{
			// The game is served to local browsers and tools; any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes served by s
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts down and closes
// every connection.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP shutdown incomplete", "error", err)
		}
	}()

	s.logger.Info("Starting WebSocket server", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return nil
}

// Stop closes all connections
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	return nil
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	_ = conn.Close() // Ignore close errors during unregistration
	s.logger.Info("Client disconnected", "total", total)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}

	identity, err := s.validator.Validate(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		s.logger.Warn("Rejected connection", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if identity != nil {
		s.logger.Info("Authenticated connection", "remote", r.RemoteAddr, "name", identity.Name)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(s.ctx, conn, s.driver, s.clock, s.logger)
	s.register(client)
	client.Start()

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}
