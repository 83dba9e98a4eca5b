package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// ClientInterface is what the hub needs from a connection: an identity, a
// workspace, and a non-blocking send.
type ClientInterface interface {
	ID() string
	WorkspaceID() int32
	Send(data []byte) error
	Close() error
}

// Hub fans events out to connected clients, grouped by workspace so one
// workspace's activity is never visible to another. Safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int32]map[string]ClientInterface
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{rooms: make(map[int32]map[string]ClientInterface)}
}

// Register adds a client to its workspace room.
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[client.WorkspaceID()]
	if room == nil {
		room = make(map[string]ClientInterface)
		h.rooms[client.WorkspaceID()] = room
	}
	room[client.ID()] = client

	log.Debug().
		Int32("workspace_id", client.WorkspaceID()).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client. Unknown clients are ignored, so it is safe
// to call from connection teardown paths that may race each other.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.WorkspaceID()]
	if !ok {
		return
	}
	if _, ok := room[client.ID()]; !ok {
		return
	}

	delete(room, client.ID())
	if len(room) == 0 {
		delete(h.rooms, client.WorkspaceID())
	}

	log.Debug().
		Int32("workspace_id", client.WorkspaceID()).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast serializes the event once and delivers it to every client in
// the workspace. Client sends never block, so delivery happens inline; a
// slow client drops the message rather than stalling the broadcast.
func (h *Hub) Broadcast(workspaceID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	room := h.rooms[workspaceID]
	targets := make([]ClientInterface, 0, len(room))
	for _, client := range room {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.Send(data); err != nil {
			log.Warn().
				Err(err).
				Int32("workspace_id", workspaceID).
				Str("client_id", client.ID()).
				Msg("Dropped event for client")
		}
	}

	if len(targets) > 0 {
		log.Debug().
			Int32("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Int("clients", len(targets)).
			Msg("Broadcast event")
	}
}

// ClientCount returns the number of clients connected for a workspace.
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[workspaceID])
}
