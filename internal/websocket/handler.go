package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Staff connections are anonymous; CORS middleware handles the
		// HTTP surface and origins are not restricted here
		return true
	},
}

// Handler handles WebSocket upgrade requests
type Handler struct {
	hub    *Hub
	config *config.Config
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		config: cfg,
		logger: logger,
	}
}

// ServeHTTP upgrades the HTTP connection and registers the staff client
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn, h.config, h.logger)

	h.hub.register <- client

	client.Start()
}
