// Package realtime fans server events out to live connections.
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/idlecoins/internal/model"
)

// directMessage targets a single client, or every client of a player
type directMessage struct {
	client   *Client
	playerID model.PlayerID
	msg      []byte
}

// Hub manages all connected clients
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "realtime")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered", slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Debug("client unregistered",
					slog.String("player_id", string(client.PlayerID())),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			sentCount := 0
			droppedCount := 0
			for client := range h.clients {
				if h.deliver(client, message) {
					sentCount++
				} else {
					droppedCount++
				}
			}
			h.mu.RUnlock()
			if droppedCount > 0 {
				h.logger.Warn("broadcast partial failure",
					slog.Int("sent", sentCount),
					slog.Int("dropped", droppedCount))
			}

		case dm := <-h.direct:
			h.mu.RLock()
			if dm.client != nil {
				if h.clients[dm.client] {
					h.deliver(dm.client, dm.msg)
				}
			} else {
				for client := range h.clients {
					if client.PlayerID() == dm.playerID {
						h.deliver(client, dm.msg)
					}
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) deliver(client *Client, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("player_id", string(client.PlayerID())))
		return false
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends an event to all clients
func (h *Hub) Broadcast(event model.EventType, data any) {
	msg, err := Encode(event, data)
	if err != nil {
		h.logger.Error("failed to encode broadcast", slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast dropped - hub buffer full", slog.String("event", string(event)))
	}
}

// Send delivers an event to one client
func (h *Hub) Send(client *Client, event model.EventType, data any) {
	h.enqueue(directMessage{client: client}, event, data)
}

// SendToPlayer delivers an event to every connection of a player
func (h *Hub) SendToPlayer(id model.PlayerID, event model.EventType, data any) {
	h.enqueue(directMessage{playerID: id}, event, data)
}

func (h *Hub) enqueue(dm directMessage, event model.EventType, data any) {
	msg, err := Encode(event, data)
	if err != nil {
		h.logger.Error("failed to encode message", slog.String("error", err.Error()))
		return
	}
	dm.msg = msg
	select {
	case h.direct <- dm:
	default:
		h.logger.Warn("message dropped - hub buffer full", slog.String("event", string(event)))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
