package messaging

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/users-service/internal/domain/entity"
	"github.com/oksasatya/users-service/internal/domain/event"
	"github.com/oksasatya/users-service/pkg/helpers"
)

type sentMessage struct {
	id          string
	contentType string
	headers     map[string]any
	body        []byte
}

type fakePublisher struct {
	sent []sentMessage
	err  error
}

func (f *fakePublisher) PublishRaw(_ context.Context, id, contentType string, headers map[string]any, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{id: id, contentType: contentType, headers: headers, body: body})
	return nil
}

type fakeMarker struct {
	marked []uuid.UUID
	err    error
}

func (f *fakeMarker) MarkPublished(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.marked = append(f.marked, id)
	return f.err
}

func newUser(t *testing.T) *entity.User {
	t.Helper()
	now := time.Now()
	email, _ := entity.NewUserEmail("alice@example.com")
	profile, err := entity.NewProfile("Alice", "Smith", now.AddDate(-30, 0, 0), now)
	if err != nil {
		t.Fatal(err)
	}
	u, err := entity.NewUser("alice", email, profile, now)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestPublishUserCreated(t *testing.T) {
	pub := &fakePublisher{}
	marker := &fakeMarker{}
	u := newUser(t)

	if err := NewUserEventPublisher(pub, marker).PublishUserCreated(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(pub.sent))
	}
	m := pub.sent[0]
	if m.id != u.ID().String() || m.contentType != "application/json" {
		t.Fatalf("unexpected message %+v", m)
	}
	if m.headers["event_type"] != "UserCreatedEvent" || m.headers["event_version"] != "v1" {
		t.Fatalf("unexpected headers %v", m.headers)
	}
	ev, err := event.DecodeUserCreated(m.body)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Username != "alice" || ev.Email != "alice@example.com" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if len(marker.marked) != 1 || marker.marked[0] != u.ID() {
		t.Fatalf("outbox marks = %v", marker.marked)
	}
}

func TestPublishUserCreatedBrokerFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"channel closed", errors.New("channel closed")},
		{"broker nacked", fmt.Errorf("%w: m-1", helpers.ErrPublishNacked)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &fakePublisher{err: tc.err}
			marker := &fakeMarker{}

			err := NewUserEventPublisher(pub, marker).PublishUserCreated(context.Background(), newUser(t))
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if len(marker.marked) != 0 {
				t.Fatal("outbox must not be marked when the broker did not confirm the message")
			}
		})
	}
}

func TestPublishUserCreatedMarkFailure(t *testing.T) {
	pub := &fakePublisher{}
	marker := &fakeMarker{err: errors.New("db gone")}

	if err := NewUserEventPublisher(pub, marker).PublishUserCreated(context.Background(), newUser(t)); err == nil {
		t.Fatal("expected mark error to be reported")
	}
	if len(pub.sent) != 1 {
		t.Fatal("message should still have been sent")
	}
}

func TestPublishUserCreatedWithoutOutbox(t *testing.T) {
	pub := &fakePublisher{}
	if err := NewUserEventPublisher(pub, nil).PublishUserCreated(context.Background(), newUser(t)); err != nil {
		t.Fatal(err)
	}
}
