package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry event actions published on mutations.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntryEventMessage notifies consumers that the ledger changed. It carries
// only the entry id and action; consumers read current state from the
// store themselves.
type EntryEventMessage struct {
	EventID   string    `json:"event_id"`
	EntryID   int64     `json:"entry_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryEventMessage creates an event for one mutated entry.
func NewEntryEventMessage(entryID int64, action string) *EntryEventMessage {
	return &EntryEventMessage{
		EventID:   uuid.NewString(),
		EntryID:   entryID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventMessageFromJSON creates a message from JSON bytes
func EntryEventMessageFromJSON(data []byte) (*EntryEventMessage, error) {
	var msg EntryEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
