package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/users-service/internal/domain/event"
)

const (
	fetchPendingSQL = `
		SELECT id, aggregate_id, event_type, event_version, payload, created_at, attempts
		FROM user_events_outbox
		WHERE published_at IS NULL AND created_at <= $1 AND attempts < $2
		ORDER BY created_at
		LIMIT $3
	`
	markPublishedSQL = `UPDATE user_events_outbox SET published_at = $2 WHERE id = $1 AND published_at IS NULL`
	markFailedSQL    = `UPDATE user_events_outbox SET attempts = attempts + 1, last_error = $2 WHERE id = $1`
)

// OutboxStore reads and updates the user_events_outbox table.
type OutboxStore struct {
	pool *pgxpool.Pool
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

// FetchPending returns unpublished messages created at or before olderThan,
// oldest first. Rows that already failed maxAttempts times are skipped.
func (s *OutboxStore) FetchPending(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]event.Message, error) {
	rows, err := s.pool.Query(ctx, fetchPendingSQL, olderThan, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (event.Message, error) {
		var m event.Message
		err := row.Scan(&m.ID, &m.AggregateID, &m.Type, &m.Version, &m.Payload, &m.CreatedAt, &m.Attempts)
		return m, err
	})
}

func (s *OutboxStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx, markPublishedSQL, id, at)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.pool.Exec(ctx, markFailedSQL, id, reason)
	return err
}
