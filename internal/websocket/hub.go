package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/metrics"
)

// Hub maintains the set of connected staff clients and fans call events
// out to all of them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound events to fan out
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Logger
	logger zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.Get().RecordStaffConnect()
			h.logger.Info().
				Str("client_id", client.id).
				Int("total_clients", total).
				Msg("staff client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordStaffDisconnect()
				h.logger.Info().
					Str("client_id", client.id).
					Int("total_clients", len(h.clients)).
					Msg("staff client disconnected")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// Broadcast sends a raw message to all connected clients
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// BroadcastEvent marshals an event and sends it to all connected clients.
// A marshal failure is logged and the event dropped; callers never see it.
func (h *Hub) BroadcastEvent(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal broadcast event")
		return
	}
	h.Broadcast(data)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// fanOut delivers one message to every registered client. Delivery is
// best-effort per client: a full send buffer drops that client without
// affecting the others.
func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
			metrics.Get().RecordEventDelivered()
		default:
			// Client's send buffer is full, close and remove it
			close(client.send)
			delete(h.clients, client)
			metrics.Get().RecordDeliveryDropped()
			h.logger.Warn().
				Str("client_id", client.id).
				Msg("client send buffer full, closing connection")
		}
	}
}
