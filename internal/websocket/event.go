package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeAdded   EventType = "added"
	EventTypeRemoved EventType = "removed"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeWorkspace EntityType = "workspace"
	EntityTypeMember    EntityType = "member"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "member.added"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "member"
	Payload   interface{} `json:"payload"`   // Entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WorkspaceUpdated creates a workspace.updated event
func WorkspaceUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeWorkspace, payload)
}

// WorkspaceDeleted creates a workspace.deleted event
func WorkspaceDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeWorkspace, payload)
}

// MemberAdded creates a member.added event
func MemberAdded(payload interface{}) Event {
	return NewEvent(EventTypeAdded, EntityTypeMember, payload)
}

// RemovedMember identifies the membership a member.removed event refers to
type RemovedMember struct {
	UserID      string `json:"userId"`
	WorkspaceID string `json:"workspaceId"`
}

// MemberRemoved creates a member.removed event
func MemberRemoved(payload interface{}) Event {
	return NewEvent(EventTypeRemoved, EntityTypeMember, payload)
}
