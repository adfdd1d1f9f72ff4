package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cimillas/ticket-exchange/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// subscription narrows the stream a client receives. Empty sets match all.
type subscription struct {
	events map[int64]bool
	kinds  map[domain.NotificationKind]bool
}

func (s subscription) matches(n domain.Notification) bool {
	if len(s.kinds) > 0 && !s.kinds[n.Kind] {
		return false
	}
	if len(s.events) > 0 && !s.events[n.EventID] {
		return false
	}
	return true
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	sub  subscription
}

// Hub streams notifications to websocket subscribers.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan domain.Notification
	done       chan struct{}
	upgrader   websocket.Upgrader
	buffer     int
	logger     *slog.Logger

	mu    sync.RWMutex
	count int
}

// NewHub builds a hub whose clients each queue up to buffer messages.
// allowedOrigins lists the browser origins that may connect; empty allows any.
func NewHub(buffer int, allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan domain.Notification, 256),
		done:       make(chan struct{}),
		buffer:     buffer,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || origins[origin]
			},
		},
	}
}

// Run dispatches notifications until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return nil

		case c := <-h.register:
			h.clients[c] = true
			h.setCount(len(h.clients))
			h.logger.Info("stream client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Info("stream client disconnected", "clients", len(h.clients))
			}

		case n := <-h.broadcast:
			data, err := json.Marshal(n)
			if err != nil {
				h.logger.Warn("marshal stream notification failed", "id", n.ID, "error", err)
				continue
			}
			for c := range h.clients {
				if !c.sub.matches(n) {
					continue
				}
				select {
				case c.send <- data:
				default:
					h.logger.Warn("stream client too slow, disconnecting")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Publish queues notifications for the stream. It never blocks the caller:
// when the queue is full the notification is dropped from the stream only.
func (h *Hub) Publish(_ context.Context, notifications []domain.Notification) error {
	for _, n := range notifications {
		select {
		case h.broadcast <- n:
		default:
			h.logger.Warn("stream queue full, dropping notification", "id", n.ID, "kind", n.Kind)
		}
	}
	return nil
}

// ServeHTTP upgrades the request to a websocket. The optional event_id and
// kind query parameters, each repeatable, filter what the client receives.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, ok := parseSubscription(r)
	if !ok {
		http.Error(w, "event_id must be an integer", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, h.buffer), sub: sub}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func parseSubscription(r *http.Request) (subscription, bool) {
	q := r.URL.Query()
	sub := subscription{
		events: make(map[int64]bool),
		kinds:  make(map[domain.NotificationKind]bool),
	}
	for _, raw := range q["event_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return subscription{}, false
		}
		sub.events[id] = true
	}
	for _, k := range q["kind"] {
		sub.kinds[domain.NotificationKind(k)] = true
	}
	return sub, true
}

// readPump discards client messages and notices disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
