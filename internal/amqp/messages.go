package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType says what happened to a record.
type EventType string

const (
	EventUpsert EventType = "upsert"
	EventDelete EventType = "delete"
)

// RecordEvent is a lightweight notification that an expense record changed.
// Consumers fetch the current record from storage; deletes carry only the id.
type RecordEvent struct {
	MessageID string    `json:"message_id"`
	Type      EventType `json:"type"`
	ID        int64     `json:"id"`
	Period    string    `json:"period,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event with a fresh message id.
func NewRecordEvent(eventType EventType, id int64, period string) *RecordEvent {
	return &RecordEvent{
		MessageID: uuid.NewString(),
		Type:      eventType,
		ID:        id,
		Period:    period,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects events a consumer cannot act on.
func (m *RecordEvent) Validate() error {
	switch m.Type {
	case EventUpsert, EventDelete:
	default:
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	if m.ID <= 0 {
		return fmt.Errorf("invalid record id %d", m.ID)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordEventFromJSON decodes and validates an event.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var msg RecordEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
