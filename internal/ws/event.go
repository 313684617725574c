package ws

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeAccount   EntityType = "account"
	EntityTypeCategory  EntityType = "category"
	EntityTypeOperation EntityType = "operation"
)

// Event represents a change-feed message sent to connected clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "operation.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "operation"
	Payload   interface{} `json:"payload"`   // Full entity data
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

// OperationCreated creates an operation.created event
func OperationCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeOperation, payload)
}

// OperationUpdated creates an operation.updated event
func OperationUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeOperation, payload)
}

// OperationDeleted creates an operation.deleted event
func OperationDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeOperation, payload)
}

// AccountUpdated creates an account.updated event, used for balance changes
// as well as direct edits
func AccountUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAccount, payload)
}

// AccountDeleted creates an account.deleted event
func AccountDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeAccount, payload)
}

// CategoryUpdated creates a category.updated event
func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}
