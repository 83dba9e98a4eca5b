package websocket

// EventPublisher is the write side of the real-time channel. Services hold
// this interface rather than the Hub so tests can capture published events.
type EventPublisher interface {
	// Publish delivers an event to every client in the workspace.
	Publish(workspaceID int32, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher on the Hub itself.
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.Broadcast(workspaceID, event)
}

// NoOpPublisher discards every event. Used where real-time updates are not
// wired, such as the export CLI.
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(workspaceID int32, event Event) {}
