package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"homepro-server/services"
)

// Client represents one connected WebSocket of a user
type Client struct {
	Hub  *Hub
	ID   uint
	Conn *websocket.Conn
	Send chan []byte
}

// Message is the frame exchanged with clients
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// MessageHandler handles an incoming message type
type MessageHandler func(*Client, *Message) error

// Hub tracks connections per user and pushes booking events to their owners
type Hub struct {
	// a user may hold several connections (tabs, devices)
	clients map[uint]map[*Client]bool

	Register   chan *Client
	Unregister chan *Client

	MessageHandlers map[string]MessageHandler

	done chan struct{}
	log  zerolog.Logger
	mu   sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(log zerolog.Logger) *Hub {
	hub := &Hub{
		clients:         make(map[uint]map[*Client]bool),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		MessageHandlers: make(map[string]MessageHandler),
		done:            make(chan struct{}),
		log:             log.With().Str("component", "ws").Logger(),
	}
	hub.MessageHandlers["ping"] = hub.handlePing
	return hub
}

// Run starts the hub's main loop and closes every connection when ctx ends
func (h *Hub) Run(ctx context.Context) {
	h.log.Info().Msg("🚀 WebSocket hub started")
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.ID] == nil {
				h.clients[client.ID] = make(map[*Client]bool)
			}
			h.clients[client.ID][client] = true
			h.mu.Unlock()
			h.log.Debug().Uint("user_id", client.ID).Msg("🔌 Client registered")

		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debug().Uint("user_id", client.ID).Msg("🔌 Client unregistered")
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.remove(client)
		}
	}
	h.log.Info().Msg("🛑 WebSocket hub stopped")
}

// remove drops a client and closes its send channel; caller holds h.mu
func (h *Hub) remove(client *Client) {
	conns, ok := h.clients[client.ID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.ID)
	}
	close(client.Send)
}

// SendToUser sends a message to every connection of a user
func (h *Hub) SendToUser(userID uint, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("❌ Error marshaling message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.clients[userID]
	if len(conns) == 0 {
		h.log.Debug().Uint("user_id", userID).Str("type", message.Type).Msg("⚠️ User not connected, event dropped")
		return
	}

	for client := range conns {
		select {
		case client.Send <- data:
		default:
			h.log.Warn().Uint("user_id", userID).Msg("⚠️ Send buffer is full")
		}
	}
}

// NotifyBooking pushes a booking event to its owner
func (h *Hub) NotifyBooking(_ context.Context, event services.BookingEvent) {
	h.SendToUser(event.UserID, &Message{
		Type:      string(event.Type),
		Timestamp: event.OccurredAt,
		Data:      event,
	})
}

// IsUserConnected checks if a user has at least one open connection
func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectedUsers returns how many distinct users are connected
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// sendToClient queues a message for one connection if it is still registered
func (h *Hub) sendToClient(client *Client, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client.ID][client] {
		return ErrClientGone
	}
	select {
	case client.Send <- data:
		return nil
	default:
		return ErrClientBufferFull
	}
}

// handlePing answers a client ping
func (h *Hub) handlePing(client *Client, _ *Message) error {
	return h.sendToClient(client, &Message{Type: "pong", Timestamp: time.Now()})
}
