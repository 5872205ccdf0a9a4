// Package ws provides a lightweight WebSocket pub/sub hub.
// Components broadcast JSON events through the hub, and every connected client
// receives them in real time. Messages from clients are handed to a single
// callback together with the sending session. The hub also handles ping/pong
// keepalives so stale connections get cleaned up automatically.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Options configures a Hub. Every field is optional.
type Options struct {
	Logger *slog.Logger

	// OnConnect runs after a client registers. Use Session.SendJSON to
	// greet it.
	OnConnect func(s *Session)
	// OnMessage receives every text message a client sends, on that
	// client's read goroutine.
	OnMessage func(s *Session, data []byte)
	// OnClients observes the connected client count.
	OnClients func(n int)

	// Rate and Burst shape each session's limiter. Zero Rate means no limit.
	Rate  rate.Limit
	Burst int
}

// Session is one connected client.
type Session struct {
	ID        string
	Remote    string
	Connected time.Time

	conn    *websocket.Conn
	hub     *Hub
	limiter *rate.Limiter
}

// Allow reports whether the session may send another rate-limited message
// now.
func (s *Session) Allow() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

// SendJSON queues v for this session only. Like BroadcastJSON it drops the
// message rather than block when the hub is backed up.
func (s *Session) SendJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case s.hub.direct <- envelope{to: s, msg: b}:
	default:
	}
}

type envelope struct {
	to  *Session
	msg []byte
}

// Hub manages WebSocket client connections and fans out broadcast messages
// to all of them. It is safe for concurrent use; register, unregister, and
// broadcast all go through channels.
type Hub struct {
	opts       Options
	log        *slog.Logger
	clients    map[*Session]struct{}
	count      atomic.Int64
	register   chan *Session
	unregister chan *Session
	broadcast  chan []byte
	direct     chan envelope
	upgrader   websocket.Upgrader
}

// NewHub allocates a hub with buffered channels.
// Call Run in a goroutine to start the event loop.
func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		opts:       opts,
		log:        logger.With("component", "ws"),
		clients:    make(map[*Session]struct{}),
		register:   make(chan *Session, 16),
		unregister: make(chan *Session, 16),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan envelope, 64),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// Run processes registrations, unregistrations, broadcasts, and keepalive
// pings in a single select loop. It closes all clients when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			for s := range h.clients {
				_ = s.conn.Close()
			}
			return

		case s := <-h.register:
			h.clients[s] = struct{}{}
			h.clientsChanged()
			h.log.Debug("client connected", "session", s.ID, "remote", s.Remote)
			if h.opts.OnConnect != nil {
				h.opts.OnConnect(s)
			}

		case s := <-h.unregister:
			h.drop(s)

		case msg := <-h.broadcast:
			for s := range h.clients {
				h.write(s, websocket.TextMessage, msg)
			}

		case env := <-h.direct:
			if _, ok := h.clients[env.to]; ok {
				h.write(env.to, websocket.TextMessage, env.msg)
			}

		case <-ping.C:
			for s := range h.clients {
				h.write(s, websocket.PingMessage, nil)
			}
		}
	}
}

func (h *Hub) write(s *Session, kind int, msg []byte) {
	deadline := 3 * time.Second
	if kind == websocket.PingMessage {
		deadline = 2 * time.Second
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(deadline))
	if err := s.conn.WriteMessage(kind, msg); err != nil {
		h.drop(s)
	}
}

func (h *Hub) drop(s *Session) {
	if _, ok := h.clients[s]; !ok {
		return
	}
	delete(h.clients, s)
	_ = s.conn.Close()
	h.clientsChanged()
	h.log.Debug("client disconnected", "session", s.ID)
}

func (h *Hub) clientsChanged() {
	h.count.Store(int64(len(h.clients)))
	if h.opts.OnClients != nil {
		h.opts.OnClients(len(h.clients))
	}
}

// Handler returns an http.Handler that upgrades incoming requests to
// WebSocket connections and registers them with the hub.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		s := &Session{
			ID:        uuid.NewString(),
			Remote:    r.RemoteAddr,
			Connected: time.Now(),
			conn:      conn,
			hub:       h,
		}
		if h.opts.Rate > 0 {
			s.limiter = rate.NewLimiter(h.opts.Rate, max(h.opts.Burst, 1))
		}
		h.register <- s

		go func() {
			defer func() { h.unregister <- s }()
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			conn.SetPongHandler(func(string) error {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				kind, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				if kind == websocket.TextMessage && h.opts.OnMessage != nil {
					h.opts.OnMessage(s, data)
				}
			}
		}()
	})
}

// BroadcastJSON marshals v to JSON and queues it for delivery to all
// connected clients. If the broadcast channel is full the message is
// silently dropped to avoid blocking the caller.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- b:
	default:
	}
}
