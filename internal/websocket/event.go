package websocket

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
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeReceipt     EntityType = "receipt"
	EntityTypeRule        EntityType = "rule"
	EntityTypeReport      EntityType = "report"
)

// Additional event types for specific events
const (
	EventTypeRecategorized EventType = "recategorized"
	EventTypeImageAttached EventType = "image_attached"
	EventTypeGenerated     EventType = "generated"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transaction"
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

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionUpdated creates a transaction.updated event
func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

// TransactionRecategorized creates a transaction.recategorized event
func TransactionRecategorized(payload interface{}) Event {
	return NewEvent(EventTypeRecategorized, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// ReceiptCreated creates a receipt.created event
func ReceiptCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeReceipt, payload)
}

// ReceiptImageAttached creates a receipt.image_attached event
func ReceiptImageAttached(payload interface{}) Event {
	return NewEvent(EventTypeImageAttached, EntityTypeReceipt, payload)
}

// ReceiptDeleted creates a receipt.deleted event
func ReceiptDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeReceipt, payload)
}

// RuleCreated creates a rule.created event
func RuleCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeRule, payload)
}

// RuleUpdated creates a rule.updated event
func RuleUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeRule, payload)
}

// RuleDeleted creates a rule.deleted event
func RuleDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeRule, payload)
}

// ReportGenerated creates a report.generated event
func ReportGenerated(payload interface{}) Event {
	return NewEvent(EventTypeGenerated, EntityTypeReport, payload)
}
