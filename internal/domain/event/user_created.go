package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/users-service/internal/domain/entity"
)

// UserCreated type and version are part of the public contract. Renaming or
// removing a field requires a new version.
const (
	UserCreatedType    = "UserCreatedEvent"
	UserCreatedVersion = "v1"
)

var ErrUnsupportedEvent = errors.New("unsupported event")

// UserCreated is announced once a user has been durably stored.
type UserCreated struct {
	EventType    string    `json:"eventType"`
	EventVersion string    `json:"eventVersion"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewUserCreated(u *entity.User) UserCreated {
	return UserCreated{
		EventType:    UserCreatedType,
		EventVersion: UserCreatedVersion,
		UserID:       u.ID().String(),
		Username:     u.Username(),
		Email:        u.Email().Value(),
		CreatedAt:    u.CreatedAt(),
	}
}

// Message wraps the event for the outbox and the broker. The message id is
// the user id, so consumers can deduplicate redeliveries.
func (e UserCreated) Message() (Message, error) {
	id, err := uuid.Parse(e.UserID)
	if err != nil {
		return Message{}, fmt.Errorf("user id: %w", err)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ID:          id,
		AggregateID: id,
		Type:        e.EventType,
		Version:     e.EventVersion,
		Payload:     payload,
		CreatedAt:   e.CreatedAt,
	}, nil
}

// DecodeUserCreated parses a payload and rejects other event types or versions.
func DecodeUserCreated(b []byte) (UserCreated, error) {
	var e UserCreated
	if err := json.Unmarshal(b, &e); err != nil {
		return UserCreated{}, err
	}
	if e.EventType != UserCreatedType || e.EventVersion != UserCreatedVersion {
		return UserCreated{}, fmt.Errorf("%w: %s/%s", ErrUnsupportedEvent, e.EventType, e.EventVersion)
	}
	if _, err := uuid.Parse(e.UserID); err != nil {
		return UserCreated{}, fmt.Errorf("user id: %w", err)
	}
	return e, nil
}
