package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/connections-go/internal/model"
)

// Hub fans messages out to every client connected to a single room
type Hub struct {
	roomCode model.RoomCode
	clients  map[*Client]bool
	mu       sync.RWMutex
	logger   *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(roomCode model.RoomCode, logger *slog.Logger) *Hub {
	return &Hub{
		roomCode:   roomCode,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("room_code", string(roomCode))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client registered",
				slog.String("player_id", string(client.playerID)),
				slog.String("transport", client.transport),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("client unregistered",
					slog.String("player_id", string(client.playerID)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("message dropped for slow clients",
					slog.String("event", message.Event),
					slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. It reports false if the hub has
// already been closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every client in the hub
func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warn("broadcast dropped - hub buffer full", slog.String("event", message.Event))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager owns the hubs for all rooms on this instance
type HubManager struct {
	hubs   map[model.RoomCode]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomCode]*Hub),
		logger: logger.With(slog.String("component", "realtime")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomCode model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		return hub
	}

	hub := NewHub(roomCode, m.logger)
	m.hubs[roomCode] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomCode model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomCode]
}

// Attach registers a new client for the room and returns it with a detach
// function the caller must invoke when the connection ends.
func (m *HubManager) Attach(roomCode model.RoomCode, playerID model.PlayerID, transport string) (*Client, func()) {
	for {
		hub := m.GetOrCreateHub(roomCode)
		client := newClient(hub, playerID, transport)
		if hub.Register(client) {
			return client, func() { hub.Unregister(client) }
		}
		// The hub was swept between lookup and registration; drop it and retry
		m.removeIfSame(roomCode, hub)
	}
}

func (m *HubManager) removeIfSame(roomCode model.RoomCode, hub *Hub) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hubs[roomCode] == hub {
		delete(m.hubs, roomCode)
	}
}

// Publish delivers a message to this instance's clients in the room.
// Rooms with nobody connected are skipped.
func (m *HubManager) Publish(ctx context.Context, roomCode model.RoomCode, message Message) error {
	if hub := m.GetHub(roomCode); hub != nil {
		hub.Broadcast(message)
	}
	return nil
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(roomCode model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		hub.Close()
		delete(m.hubs, roomCode)
		m.logger.Info("hub removed", slog.String("room_code", string(roomCode)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, code)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removed))
	}
	return removed
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// RunSweeper periodically removes empty hubs until ctx is cancelled, then
// closes every remaining hub.
func (m *HubManager) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.CleanupEmptyHubs()
		case <-ctx.Done():
			m.closeAll()
			return nil
		}
	}
}

func (m *HubManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, code)
	}
}
