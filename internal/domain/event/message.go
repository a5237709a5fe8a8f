package event

import (
	"time"

	"github.com/google/uuid"
)

// Message is a serialized event as kept in the outbox and sent to the broker.
type Message struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	Type        string
	Version     string
	Payload     []byte
	CreatedAt   time.Time
	Attempts    int
}

// Headers returns the broker headers describing the payload.
func (m Message) Headers() map[string]any {
	return map[string]any{
		"event_type":    m.Type,
		"event_version": m.Version,
	}
}
