package websocket

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients connected to the specified workspace
	Publish(workspaceID string, event Event)
}

var (
	workspaceDeletedType = string(EntityTypeWorkspace) + "." + string(EventTypeDeleted)
	memberRemovedType    = string(EntityTypeMember) + "." + string(EventTypeRemoved)
)

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the workspace.
// A workspace.deleted event also disconnects the workspace's clients, and a
// member.removed event disconnects the removed user's clients in that workspace.
func (h *Hub) Publish(workspaceID string, event Event) {
	switch event.Type {
	case workspaceDeletedType:
		h.broadcast(workspaceID, event, true)
		h.CloseWorkspace(workspaceID)
	case memberRemovedType:
		h.broadcast(workspaceID, event, true)
		if removed, ok := event.Payload.(RemovedMember); ok {
			h.CloseUser(workspaceID, removed.UserID)
		}
	default:
		h.Broadcast(workspaceID, event)
	}
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(workspaceID string, event Event) {}
