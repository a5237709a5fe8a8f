package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/internal/domain/event"
	"github.com/oksasatya/users-service/internal/infrastructure/messaging"
)

var relayed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "users_outbox_relayed_total",
		Help: "Outbox messages handled by the relay, by outcome",
	},
	[]string{"outcome"},
)

// Store is the outbox persistence used by the relay.
type Store interface {
	// FetchPending returns unpublished rows created before olderThan that
	// have failed fewer than maxAttempts times.
	FetchPending(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]event.Message, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type Options struct {
	Interval time.Duration
	// Grace leaves fresh rows to the request path that created them.
	Grace     time.Duration
	BatchSize int
	// MaxAttempts parks a message after that many failed relays; it stays
	// in the table for manual replay.
	MaxAttempts int
}

// Relay re-publishes outbox messages whose inline publish never completed,
// giving at-least-once delivery of user events.
type Relay struct {
	store  Store
	pub    messaging.Publisher
	logger *logrus.Logger
	opts   Options
	now    func() time.Time
}

func NewRelay(store Store, pub messaging.Publisher, logger *logrus.Logger, opts Options) *Relay {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Grace < 0 {
		opts.Grace = 0
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &Relay{store: store, pub: pub, logger: logger, opts: opts, now: time.Now}
}

// Run relays on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()
	r.logger.WithField("interval", r.opts.Interval.String()).Info("outbox relay started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.WithError(err).Warn("outbox relay pass failed")
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many messages were sent.
// A message that fails to publish is recorded and retried on a later pass.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	pending, err := r.store.FetchPending(ctx, r.now().Add(-r.opts.Grace), r.opts.MaxAttempts, r.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		entry := r.logger.WithFields(logrus.Fields{"message_id": m.ID.String(), "event_type": m.Type, "attempts": m.Attempts})
		if err := messaging.PublishMessage(ctx, r.pub, m); err != nil {
			relayed.WithLabelValues("failed").Inc()
			entry.WithError(err).Warn("relay publish failed")
			if mErr := r.store.MarkFailed(ctx, m.ID, err.Error()); mErr != nil {
				entry.WithError(mErr).Error("record relay failure")
				continue
			}
			if m.Attempts+1 >= r.opts.MaxAttempts {
				relayed.WithLabelValues("parked").Inc()
				entry.WithError(err).WithField("max_attempts", r.opts.MaxAttempts).
					Error("outbox message parked after too many failed relays")
			}
			continue
		}
		if err := r.store.MarkPublished(ctx, m.ID, r.now().UTC()); err != nil {
			relayed.WithLabelValues("unmarked").Inc()
			entry.WithError(err).Error("mark relayed message published")
			continue
		}
		relayed.WithLabelValues("published").Inc()
		sent++
	}
	if sent > 0 {
		r.logger.WithField("count", sent).Info("outbox messages relayed")
	}
	return sent, nil
}
