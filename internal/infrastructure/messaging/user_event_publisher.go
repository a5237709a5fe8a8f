package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/users-service/internal/domain/entity"
	"github.com/oksasatya/users-service/internal/domain/event"
)

const jsonContentType = "application/json"

// Publisher sends one raw message to the broker.
type Publisher interface {
	PublishRaw(ctx context.Context, messageID, contentType string, headers map[string]any, body []byte) error
}

// OutboxMarker records that an outbox message reached the broker.
type OutboxMarker interface {
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PublishMessage sends an outbox message with its id and event headers.
func PublishMessage(ctx context.Context, pub Publisher, m event.Message) error {
	return pub.PublishRaw(ctx, m.ID.String(), jsonContentType, m.Headers(), m.Payload)
}

// UserEventPublisher announces created users on the broker and marks the
// matching outbox row so the relay does not send it again.
type UserEventPublisher struct {
	pub    Publisher
	outbox OutboxMarker
	now    func() time.Time
}

func NewUserEventPublisher(pub Publisher, outbox OutboxMarker) *UserEventPublisher {
	return &UserEventPublisher{pub: pub, outbox: outbox, now: time.Now}
}

func (p *UserEventPublisher) PublishUserCreated(ctx context.Context, u *entity.User) error {
	msg, err := event.NewUserCreated(u).Message()
	if err != nil {
		return err
	}
	if err := PublishMessage(ctx, p.pub, msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	if p.outbox == nil {
		return nil
	}
	// The broker already has the event; a failed mark only means the relay
	// will deliver it a second time.
	if err := p.outbox.MarkPublished(ctx, msg.ID, p.now().UTC()); err != nil {
		return fmt.Errorf("mark outbox %s published: %w", msg.ID, err)
	}
	return nil
}
