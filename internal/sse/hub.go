package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/eventledger/internal/model"
)

// Hub manages SSE clients watching a single event date
type Hub struct {
	date    model.EventDate
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for an event date
func NewHub(date model.EventDate, logger *slog.Logger) *Hub {
	return &Hub{
		date:       date,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("date", string(date))),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("sse hub started")
	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("sse client unregistered",
					slog.String("client_id", client.id),
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
				h.logger.Warn("sse message dropped for slow clients", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("sse hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. It returns false if the hub is closed.
// A client added here is counted by ClientCount before Register returns.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return false
	default:
	}
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("sse client registered",
		slog.String("client_id", client.id),
		slog.Int("total_clients", clientCount))
	return true
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a message to all clients without blocking the caller
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// BroadcastEvent sends an SSE event with a name and data
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
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

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager manages hubs for all event dates
type HubManager struct {
	hubs   map[model.EventDate]*Hub
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.EventDate]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a date, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(date model.EventDate) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubLocked(date)
}

func (m *HubManager) hubLocked(date model.EventDate) *Hub {
	if hub, ok := m.hubs[date]; ok {
		return hub
	}

	hub := NewHub(date, m.logger)
	m.hubs[date] = hub
	go hub.Run()
	return hub
}

// Subscribe registers client on the hub for date and returns that hub.
// Lookup and registration happen under the manager lock, so CleanupEmptyHubs
// never closes a hub between the two. It returns nil once the manager is closed.
func (m *HubManager) Subscribe(date model.EventDate, client *Client) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	hub := m.hubLocked(date)
	if !hub.Register(client) {
		return nil
	}
	return hub
}

// GetHub returns the hub for a date, or nil if nobody is watching it
func (m *HubManager) GetHub(date model.EventDate) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[date]
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for date, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, date)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// Close shuts down every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for date, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, date)
	}
}
