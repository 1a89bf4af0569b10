/*
Package chat contains the core logic of the room chat server.

This file defines the Server struct: the TCP listener, the accept loop with
per-IP admission control, connection tracking, and graceful shutdown.
*/
package chat

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"roomcast/internal/configs"
	"roomcast/internal/pkg/limiter"
	"roomcast/internal/pkg/logx"
)

// Server owns the listener, the shared registries, and every live connection.
// Registries are values owned by the server instance, not process globals, so
// multiple servers can coexist in one process (tests rely on this).
type Server struct {
	cfg *configs.AppConfig

	users      *UserRegistry
	rooms      *RoomRegistry
	dispatcher *Dispatcher

	listener net.Listener
	limiter  *limiter.IPRateLimiter

	// mu protects the conns set.
	mu    sync.Mutex
	conns map[*Client]struct{}

	// wg tracks the accept loop and every per-connection goroutine pair.
	wg sync.WaitGroup

	// structured logger with server context.
	logger zerolog.Logger
}

// Stats is the read-only state snapshot exposed through the ops endpoint.
type Stats struct {
	OnlineUsers int            `json:"onlineUsers"`
	RoomCount   int            `json:"roomCount"`
	RoomSizes   map[string]int `json:"roomSizes"`
}

// NewServer constructs a Server from the given configuration.
func NewServer(cfg *configs.AppConfig) *Server {
	users := NewUserRegistry()
	rooms := NewRoomRegistry()

	serverLogger := logx.Logger().With().Str("component", "Server").Logger()

	return &Server{
		cfg:        cfg,
		users:      users,
		rooms:      rooms,
		dispatcher: NewDispatcher(users, rooms),
		limiter:    limiter.NewIPRateLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst),
		conns:      make(map[*Client]struct{}),
		logger:     serverLogger,
	}
}

// Start binds the chat listener and launches the accept loop.
// A bind failure is fatal to the caller; nothing is retried.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind chat listener on %s: %w", addr, err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Chat server listening")
	return nil
}

// Addr returns the bound listener address. Valid only after Start.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// acceptLoop admits connections until the listener closes. Each admitted
// connection gets a write goroutine and a read goroutine; the read goroutine
// owns dispatch order for that connection.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Listener closed during shutdown.
			s.logger.Info().Msg("Accept loop stopped")
			return
		}

		if !s.limiter.AllowAddr(conn.RemoteAddr().String()) {
			s.logger.Warn().
				Str("remote_addr", conn.RemoteAddr().String()).
				Msg("Connection rejected: rate limit exceeded")
			conn.Close()
			continue
		}

		client := NewClient(conn, s.dispatcher, s.cfg.IdleTimeout)
		s.track(client)

		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			client.WritePump()
		}()
		go func() {
			defer s.wg.Done()
			client.ReadPump()
			s.untrack(client)
		}()
	}
}

func (s *Server) track(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns[client] = struct{}{}
}

func (s *Server) untrack(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, client)
}

// Stats returns a snapshot of the current registry state.
func (s *Server) Stats() Stats {
	sizes := s.rooms.Sizes()

	return Stats{
		OnlineUsers: s.users.Len(),
		RoomCount:   len(sizes),
		RoomSizes:   sizes,
	}
}

// Shutdown stops accepting, closes every live connection, and waits for all
// connection goroutines to finish or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Chat server shutting down")

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Listener close error")
		}
	}

	s.mu.Lock()
	clients := make([]*Client, 0, len(s.conns))
	for client := range s.conns {
		clients = append(clients, client)
	}
	s.mu.Unlock()

	for _, client := range clients {
		client.Shutdown()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Chat server shutdown complete")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Chat server shutdown timed out; some connections may linger")
		return ctx.Err()
	}
}
