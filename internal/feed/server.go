package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/govee-panel/internal/logging"
	"github.com/muurk/govee-panel/internal/panel"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outgoing messages queued per client before it is dropped
	sendBuffer = 32

	shutdownTimeout = 5 * time.Second
)

// Config holds the feed configuration
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8765"
	Addr string

	// AllowedOrigins lists Origin header values accepted on /ws. "*" accepts
	// any origin. Empty keeps the same-origin check.
	AllowedOrigins []string
}

// Server exposes a panel session over HTTP and WebSocket
type Server struct {
	session  *panel.Session
	config   Config
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	wg      sync.WaitGroup
}

// New creates a feed for session
func New(session *panel.Session, config Config) *Server {
	s := &Server{
		session: session,
		config:  config,
		clients: make(map[*client]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(config.AllowedOrigins) > 0 {
		s.upgrader.CheckOrigin = s.checkOrigin
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn("Rejected feed origin", zap.String("origin", origin))
	return false
}

// Handler returns the HTTP routes of the feed
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /devices", s.handleDevices)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Run listens on Config.Addr and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// client and waits for their goroutines
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	forwardCtx, stopForward := context.WithCancel(ctx)
	defer stopForward()
	go s.Forward(forwardCtx)

	errChan := make(chan error, 1)
	go func() {
		logging.Info("Feed listening", zap.String("addr", ln.Addr().String()))
		errChan <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		logging.Info("Shutting down feed")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)

		// Hijacked websocket connections are not closed by Shutdown
		s.closeAll()
		s.wg.Wait()
		return err
	}
}

// Forward relays panel events to every connected client until ctx is
// cancelled
func (s *Server) Forward(ctx context.Context) {
	events, unsubscribe := s.session.Store.Subscribe(64)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.broadcast(eventMessage(s.session, ev))
		}
	}
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(buildSnapshot(s.session)); err != nil {
		logging.Warn("Failed to write snapshot", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		logging.Debug("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		server:     s,
		conn:       conn,
		remoteAddr: r.RemoteAddr,
		send:       make(chan []byte, sendBuffer),
	}

	snapshot, err := json.Marshal(buildSnapshot(s.session))
	if err != nil {
		logging.Error("Failed to encode snapshot", zap.Error(err))
		_ = conn.Close()
		return
	}
	c.send <- snapshot

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	logging.LogFeedConnection(c.remoteAddr, "connected")

	s.wg.Add(2)
	go c.writePump()
	go c.readPump()
}

func (s *Server) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("Failed to encode feed message", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.queueLocked(c, data)
	}
}

// sendTo queues data for c unless it has already been removed
func (s *Server) sendTo(c *client, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		s.queueLocked(c, data)
	}
}

// queueLocked drops c when its send buffer is full so a slow reader never
// stalls the panel
func (s *Server) queueLocked(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		logging.Warn("Dropping slow feed client", zap.String("remote_addr", c.remoteAddr))
		s.removeLocked(c)
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	s.removeLocked(c)
	s.mu.Unlock()
}

func (s *Server) removeLocked(c *client) {
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.removeLocked(c)
	}
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
