package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/peoplebingo/internal/model"
)

// Hub fans events out to every client observing one session
type Hub struct {
	code    model.SessionCode
	clients map[*Client]struct{}
	closed  bool
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewHub creates a new Hub for a session
func NewHub(code model.SessionCode, logger *slog.Logger) *Hub {
	return &Hub{
		code:    code,
		clients: make(map[*Client]struct{}),
		logger:  logger.With(slog.String("session", string(code))),
	}
}

// Register adds a client to the hub. Registering on a closed hub closes
// the client immediately.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		client.Close()
		return
	}
	h.clients[client] = struct{}{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("observer registered",
		slog.String("client_id", client.id),
		slog.String("transport", string(client.transport)),
		slog.Int("total_clients", clientCount))
}

// Unregister removes and closes a client. It is safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	clientCount := len(h.clients)
	h.mu.Unlock()

	client.Close()
	if ok {
		h.logger.Info("observer unregistered",
			slog.String("client_id", client.id),
			slog.Duration("connection_duration", time.Since(client.connectedAt)),
			slog.Int("total_clients", clientCount))
	}
}

// Broadcast delivers a message to every client without blocking. Clients
// that cannot take the message are dropped once the pass is over.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var failed []*Client
	for _, client := range clients {
		if !client.enqueue(msg) {
			failed = append(failed, client)
		}
	}

	for _, client := range failed {
		h.logger.Warn("dropping observer that could not take message",
			slog.String("client_id", client.id),
			slog.String("event", msg.Event))
		h.Unregister(client)
	}
}

// BroadcastEvent encodes an event and broadcasts it
func (h *Hub) BroadcastEvent(event model.Event) {
	msg, err := encodeEvent(event)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event.EventType())),
			slog.String("error", err.Error()))
		return
	}
	h.Broadcast(msg)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.closed = true
	h.mu.Unlock()

	for client := range clients {
		client.Close()
	}
	h.logger.Info("hub closed", slog.Int("disconnected_clients", len(clients)))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encodeEvent(event model.Event) (Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: string(event.EventType()), Data: data}, nil
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on newlines, dropping carriage returns and a single
// trailing newline
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// HubManager owns the hubs for all sessions
type HubManager struct {
	hubs   map[model.SessionCode]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.SessionCode]*Hub),
		logger: logger.With(slog.String("component", "stream")),
	}
}

func (m *HubManager) getOrCreateLocked(code model.SessionCode) *Hub {
	if hub, ok := m.hubs[code]; ok {
		return hub
	}
	hub := NewHub(code, m.logger)
	m.hubs[code] = hub
	return hub
}

// GetHub returns the hub for a session, or nil if it doesn't exist
func (m *HubManager) GetHub(code model.SessionCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[code]
}

// Subscribe creates a client and registers it with the session's hub.
// Registration happens under the manager lock so a concurrent cleanup
// cannot close the hub in between.
func (m *HubManager) Subscribe(code model.SessionCode, transport Transport) *Client {
	client := NewClient(code, transport)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreateLocked(code).Register(client)
	return client
}

// Unregister removes a client from its session's hub. It is a no-op if the
// client or the hub is already gone.
func (m *HubManager) Unregister(client *Client) {
	if hub := m.GetHub(client.code); hub != nil {
		hub.Unregister(client)
		return
	}
	client.Close()
}

// Publish delivers an event to the session's observers. Sessions nobody is
// watching have no hub, and the event is discarded.
func (m *HubManager) Publish(code model.SessionCode, event model.Event) {
	hub := m.GetHub(code)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(event)
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for code, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, code)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removedCount))
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
	hubs := m.hubs
	m.hubs = make(map[model.SessionCode]*Hub)
	m.mu.Unlock()

	for _, hub := range hubs {
		hub.Close()
	}
}

// RunCleanup sweeps empty hubs every interval until ctx is done
func (m *HubManager) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupEmptyHubs()
		case <-ctx.Done():
			return
		}
	}
}
