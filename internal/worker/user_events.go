package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/internal/domain/event"
)

// ErrMalformedEvent marks deliveries that can never succeed.
var ErrMalformedEvent = errors.New("malformed event")

var processed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "users_events_processed_total",
		Help: "User events consumed by the worker, by outcome",
	},
	[]string{"outcome"},
)

type Indexer interface {
	IndexUser(ctx context.Context, e event.UserCreated) error
}

type Archiver interface {
	ArchiveUserCreated(ctx context.Context, e event.UserCreated, raw []byte) (string, error)
}

type WelcomeMailer interface {
	SendWelcome(ctx context.Context, to, username string, createdAt time.Time) error
}

// UserEventsConsumer runs the side effects of a created user. Every step is
// optional and idempotent per user id.
type UserEventsConsumer struct {
	Indexer  Indexer
	Archiver Archiver
	Mailer   WelcomeMailer
	Logger   *logrus.Logger
	Timeout  time.Duration
}

// Handle decodes one payload and runs the configured steps in order.
func (c *UserEventsConsumer) Handle(ctx context.Context, body []byte) error {
	e, err := event.DecodeUserCreated(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if c.Indexer != nil {
		if err := c.Indexer.IndexUser(ctx, e); err != nil {
			return err
		}
	}
	if c.Archiver != nil {
		url, err := c.Archiver.ArchiveUserCreated(ctx, e, body)
		if err != nil {
			return err
		}
		c.Logger.WithFields(logrus.Fields{"user_id": e.UserID, "object": url}).Debug("event archived")
	}
	if c.Mailer != nil {
		if err := c.Mailer.SendWelcome(ctx, e.Email, e.Username, e.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// Process handles a delivery and settles it: ack on success, dead-letter on a
// malformed payload and requeue otherwise.
func (c *UserEventsConsumer) Process(ctx context.Context, d amqp.Delivery) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entry := c.Logger.WithFields(logrus.Fields{"message_id": d.MessageId, "redelivered": d.Redelivered})
	err := c.Handle(hctx, d.Body)
	switch {
	case err == nil:
		processed.WithLabelValues("ack").Inc()
		if aErr := d.Ack(false); aErr != nil {
			entry.WithError(aErr).Error("ack failed")
		}
	case errors.Is(err, ErrMalformedEvent):
		processed.WithLabelValues("dead_letter").Inc()
		entry.WithError(err).Warn("dropping malformed event")
		if nErr := d.Nack(false, false); nErr != nil {
			entry.WithError(nErr).Error("nack failed")
		}
	default:
		processed.WithLabelValues("requeue").Inc()
		entry.WithError(err).Warn("event processing failed, requeueing")
		if nErr := d.Nack(false, true); nErr != nil {
			entry.WithError(nErr).Error("nack failed")
		}
	}
}

// Consume processes deliveries until ctx is done or the channel closes.
func (c *UserEventsConsumer) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.Process(ctx, d)
		}
	}
}
