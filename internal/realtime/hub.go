package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/angel7544/mentorconnect/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	defaultBufferSize = 64
)

// Named realtime streams used across the platform.
const (
	StreamNotifications = "notifications"
	StreamMessages      = "messages"
)

// Message represents a JSON payload delivered to realtime subscribers.
type Message struct {
	Stream string `json:"stream"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

// Hub fans out per-user events to connected websocket clients. Clients receive
// every stream; filtering happens by user identity.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*connection]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a realtime hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // auth happens before the upgrade; origin is not a boundary here
			},
		},
		log: logger.WithModule("realtime"),
	}
}

// Serve upgrades the HTTP connection to a WebSocket and registers the client.
// Blocks until the client disconnects.
func (h *Hub) Serve(userID string, w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := &connection{
		socket: socket,
		userID: userID,
		send:   make(chan Message, defaultBufferSize),
		done:   make(chan struct{}),
	}

	h.register(client)
	defer h.unregister(client)

	go client.writeLoop()
	client.readLoop()
}

// BroadcastToUser delivers a message to every open connection of the user.
func (h *Hub) BroadcastToUser(stream, userID string, message Message) {
	if stream == "" || userID == "" {
		return
	}
	message.Stream = stream

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- message:
		default:
			// Slow consumer: sever the connection rather than block the caller.
			// Unregistration follows once its read loop observes the close.
			h.log.Warn("closing backpressured client", zap.String("user_id", userID))
			client.close()
		}
	}
}

// BroadcastToUsers delivers a message to each of the supplied user IDs.
func (h *Hub) BroadcastToUsers(stream string, userIDs []string, message Message) {
	for _, userID := range userIDs {
		h.BroadcastToUser(stream, userID, message)
	}
}

// Close severs every open connection. Used during server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, peers := range h.clients {
		for client := range peers {
			client.close()
		}
	}
	h.clients = make(map[string]map[*connection]struct{})
}

// ConnectionCount reports the number of open connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*connection]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	peers := h.clients[client.userID]
	delete(peers, client)
	if len(peers) == 0 {
		delete(h.clients, client.userID)
	}
}

type connection struct {
	socket *websocket.Conn
	userID string
	send   chan Message
	done   chan struct{}
	once   sync.Once
}

// close tears down the socket without touching hub state, so it is safe to
// call while the hub lock is held.
func (c *connection) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.socket.Close()
	})
}

func (c *connection) readLoop() {
	defer c.close()

	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Inbound payloads are ignored; the socket is a one-way event feed.
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
