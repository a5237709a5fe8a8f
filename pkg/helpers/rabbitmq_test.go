package helpers

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeConfirm struct {
	acked bool
	err   error
}

func (c fakeConfirm) WaitContext(context.Context) (bool, error) { return c.acked, c.err }

type fakeChannel struct {
	confirm    fakeConfirm
	publishErr error
	dead       bool
	closed     bool
	published  []amqp.Publishing
}

func (c *fakeChannel) Publish(_ context.Context, msg amqp.Publishing) (Confirmation, error) {
	if c.publishErr != nil {
		return nil, c.publishErr
	}
	c.published = append(c.published, msg)
	return c.confirm, nil
}

func (c *fakeChannel) IsClosed() bool { return c.dead || c.closed }
func (c *fakeChannel) Close() error   { c.closed = true; return nil }

// dialer hands out the given channels in order and counts dials.
type dialer struct {
	channels []*fakeChannel
	dials    int
}

func (d *dialer) open() (publishChannel, error) {
	if d.dials >= len(d.channels) {
		return nil, errors.New("connection refused")
	}
	ch := d.channels[d.dials]
	d.dials++
	return ch, nil
}

func TestPublishRawConfirms(t *testing.T) {
	cases := []struct {
		name    string
		confirm fakeConfirm
		wantErr error
	}{
		{"acked", fakeConfirm{acked: true}, nil},
		{"nacked", fakeConfirm{acked: false}, ErrPublishNacked},
		{"confirm wait failed", fakeConfirm{err: context.DeadlineExceeded}, context.DeadlineExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch := &fakeChannel{confirm: tc.confirm}
			d := &dialer{channels: []*fakeChannel{ch}}
			p := newRabbitPublisher("user.events", d.open)

			err := p.PublishRaw(context.Background(), "m-1", "application/json", map[string]any{"event_type": "UserCreated"}, []byte(`{}`))
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if len(ch.published) != 1 {
				t.Fatalf("published %d messages, want 1", len(ch.published))
			}
			msg := ch.published[0]
			if msg.MessageId != "m-1" || msg.DeliveryMode != amqp.Persistent {
				t.Fatalf("unexpected publishing: %+v", msg)
			}
		})
	}
}

func TestPublishRawRedialsClosedChannel(t *testing.T) {
	first := &fakeChannel{confirm: fakeConfirm{acked: true}}
	second := &fakeChannel{confirm: fakeConfirm{acked: true}}
	d := &dialer{channels: []*fakeChannel{first, second}}
	p := newRabbitPublisher("user.events", d.open)

	ctx := context.Background()
	if err := p.PublishRaw(ctx, "m-1", "application/json", nil, nil); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	first.dead = true
	if err := p.PublishRaw(ctx, "m-2", "application/json", nil, nil); err != nil {
		t.Fatalf("publish after channel loss: %v", err)
	}
	if d.dials != 2 {
		t.Fatalf("dials = %d, want 2", d.dials)
	}
	if len(second.published) != 1 || second.published[0].MessageId != "m-2" {
		t.Fatalf("second channel did not carry m-2: %+v", second.published)
	}
}

func TestPublishRawRedialFailure(t *testing.T) {
	d := &dialer{}
	p := newRabbitPublisher("user.events", d.open)
	if err := p.PublishRaw(context.Background(), "m-1", "application/json", nil, nil); err == nil {
		t.Fatal("publish without a reachable broker should fail")
	}
}

func TestPublishRawAfterClose(t *testing.T) {
	ch := &fakeChannel{confirm: fakeConfirm{acked: true}}
	d := &dialer{channels: []*fakeChannel{ch}}
	p := newRabbitPublisher("user.events", d.open)
	p.Close()
	err := p.PublishRaw(context.Background(), "m-1", "application/json", nil, nil)
	if !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("err = %v, want ErrPublisherClosed", err)
	}
	if d.dials != 0 {
		t.Fatalf("closed publisher redialed %d times", d.dials)
	}
}
