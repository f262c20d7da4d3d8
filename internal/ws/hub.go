package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/backgammon/internal/api/response"
	"github.com/mcoot/backgammon/internal/model"
)

// envelope is a message addressed to one player, or to everyone when to is empty
type envelope struct {
	to   model.PlayerID
	data []byte
}

// Hub manages websocket clients for a single game
type Hub struct {
	gameID  model.GameID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// onJoin is called when a player's first connection registers
	onJoin func(gameID model.GameID, playerID model.PlayerID)
	// onLeave is called when a player's last connection closes
	onLeave func(gameID model.GameID, playerID model.PlayerID)

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a game
func NewHub(gameID model.GameID, logger *slog.Logger) *Hub {
	return newHub(gameID, logger.With(slog.String("game_id", string(gameID))))
}

func newHub(gameID model.GameID, logger *slog.Logger) *Hub {
	return &Hub{
		gameID:     gameID,
		clients:    make(map[*Client]bool),
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("ws hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			first := !h.connectedLocked(client.playerID)
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client registered",
				slog.String("player_id", string(client.playerID)),
				slog.Int("total_clients", clientCount))
			if first && h.onJoin != nil {
				go h.onJoin(h.gameID, client.playerID)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			stillConnected := h.connectedLocked(client.playerID)
			clientCount := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}
			h.logger.Info("ws client unregistered",
				slog.String("player_id", string(client.playerID)),
				slog.Duration("connection_duration", time.Since(client.connectedAt)),
				slog.Int("total_clients", clientCount))
			if !stillConnected && h.onLeave != nil {
				go h.onLeave(h.gameID, client.playerID)
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			sentCount := 0
			droppedCount := 0
			for client := range h.clients {
				if msg.to != "" && client.playerID != msg.to {
					continue
				}
				select {
				case client.send <- msg.data:
					sentCount++
				default:
					droppedCount++
					h.logger.Warn("ws message dropped - client buffer full",
						slog.String("player_id", string(client.playerID)))
				}
			}
			h.mu.RUnlock()
			if droppedCount > 0 {
				h.logger.Warn("ws broadcast partial failure",
					slog.Int("sent", sentCount),
					slog.Int("dropped", droppedCount))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
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

// Send queues data for one player, or for every client when to is empty
func (h *Hub) Send(to model.PlayerID, data []byte) {
	select {
	case h.broadcast <- envelope{to: to, data: data}:
	default:
		h.logger.Warn("ws broadcast dropped - hub buffer full")
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

// Connected reports whether the player has at least one open connection
func (h *Hub) Connected(playerID model.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connectedLocked(playerID)
}

func (h *Hub) connectedLocked(playerID model.PlayerID) bool {
	for client := range h.clients {
		if client.playerID == playerID {
			return true
		}
	}
	return false
}

// HubManager manages hubs for all games and publishes game events to them
type HubManager struct {
	hubs    map[model.GameID]*Hub
	mu      sync.RWMutex
	logger  *slog.Logger
	onLeave func(gameID model.GameID, playerID model.PlayerID)
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GameID]*Hub),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// OnPlayerLeft sets the callback for a player whose last connection to a
// game closed. It applies to hubs created afterwards.
func (m *HubManager) OnPlayerLeft(fn func(gameID model.GameID, playerID model.PlayerID)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLeave = fn
}

// GetOrCreateHub returns the hub for a game, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		return hub
	}

	hub := NewHub(gameID, m.logger)
	hub.onLeave = m.onLeave
	m.hubs[gameID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a game, or nil if it doesn't exist
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[gameID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(gameID model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		hub.Close()
		delete(m.hubs, gameID)
		m.logger.Info("ws hub removed", slog.String("game_id", string(gameID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients and returns how many were removed
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("ws empty hubs cleaned up", slog.Int("removed", removedCount))
	}
	return removedCount
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// Close shuts down every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}

// Publish delivers an event to the connections of its game. Events for a
// game nobody is watching are dropped.
func (m *HubManager) Publish(event model.Event) {
	hub := m.GetHub(event.GameID)
	if hub == nil {
		return
	}
	data, err := json.Marshal(response.EventFromModel(event))
	if err != nil {
		m.logger.Error("ws failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	hub.Send(event.PlayerID, data)
}
