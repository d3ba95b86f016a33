package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	WorkspaceID() string
	UserID() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by workspace ID
// It is safe for concurrent use
type Hub struct {
	// workspaces maps workspace ID to a map of client ID to client
	workspaces map[string]map[string]ClientInterface
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		workspaces: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its workspace
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	workspaceID := client.WorkspaceID()
	clientID := client.ID()

	if h.workspaces[workspaceID] == nil {
		h.workspaces[workspaceID] = make(map[string]ClientInterface)
	}

	h.workspaces[workspaceID][clientID] = client

	log.Debug().
		Str("workspace_id", workspaceID).
		Str("user_id", client.UserID()).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	workspaceID := client.WorkspaceID()
	clientID := client.ID()

	if clients, ok := h.workspaces[workspaceID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty workspace maps
			if len(clients) == 0 {
				delete(h.workspaces, workspaceID)
			}

			log.Debug().
				Str("workspace_id", workspaceID).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients in a specific workspace
func (h *Hub) Broadcast(workspaceID string, event Event) {
	h.broadcast(workspaceID, event, false)
}

// broadcast fans out to the workspace's clients. With wait set it returns only
// after every send was attempted.
func (h *Hub) broadcast(workspaceID string, event Event, wait bool) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.workspaces[workspaceID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, client := range clientsCopy {
		wg.Add(1)
		go func(c ClientInterface) {
			defer wg.Done()
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("workspace_id", workspaceID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}
	if wait {
		wg.Wait()
	}

	log.Debug().
		Str("workspace_id", workspaceID).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients connected to a workspace
func (h *Hub) ClientCount(workspaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.workspaces[workspaceID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all workspaces
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.workspaces {
		total += len(clients)
	}
	return total
}

// CloseWorkspace disconnects every client of a workspace, used after the workspace is deleted
func (h *Hub) CloseWorkspace(workspaceID string) {
	h.mu.Lock()
	clients := h.workspaces[workspaceID]
	delete(h.workspaces, workspaceID)
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.Close(); err != nil {
			log.Debug().
				Err(err).
				Str("workspace_id", workspaceID).
				Str("client_id", client.ID()).
				Msg("Failed to close client")
		}
	}
}

// CloseUser disconnects a user's clients in one workspace, used after the membership is removed
func (h *Hub) CloseUser(workspaceID, userID string) {
	h.mu.Lock()
	var revoked []ClientInterface
	if clients, ok := h.workspaces[workspaceID]; ok {
		for id, client := range clients {
			if client.UserID() == userID {
				revoked = append(revoked, client)
				delete(clients, id)
			}
		}
		if len(clients) == 0 {
			delete(h.workspaces, workspaceID)
		}
	}
	h.mu.Unlock()

	for _, client := range revoked {
		_ = client.Close()
	}
	if len(revoked) > 0 {
		log.Info().
			Str("workspace_id", workspaceID).
			Str("user_id", userID).
			Int("client_count", len(revoked)).
			Msg("Disconnected removed member")
	}
}

// CloseAll disconnects every client, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	workspaces := h.workspaces
	h.workspaces = make(map[string]map[string]ClientInterface)
	h.mu.Unlock()

	for _, clients := range workspaces {
		for _, client := range clients {
			_ = client.Close()
		}
	}
}
