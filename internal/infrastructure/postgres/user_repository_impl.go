package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/users-service/internal/domain/entity"
	"github.com/oksasatya/users-service/internal/domain/event"
	"github.com/oksasatya/users-service/internal/domain/repository"
)

const (
	selectUserSQL = `
		SELECT u.id, u.username, u.email, u.created_at,
		       p.id, p.first_name, p.last_name, p.date_of_birth
		FROM users u
		JOIN profiles p ON p.user_id = u.id
	`
	insertUserSQL = `
		INSERT INTO users (id, username, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	insertProfileSQL = `
		INSERT INTO profiles (id, user_id, first_name, last_name, date_of_birth)
		VALUES ($1, $2, $3, $4, $5)
	`
	insertOutboxSQL = `
		INSERT INTO user_events_outbox (id, aggregate_id, event_type, event_version, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
)

// DB is the part of *pgxpool.Pool the user repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store hands out unit-of-work repositories backed by one pgx pool.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.UserRepository {
	return &UserRepository{db: s.db}
}

// UserRepository reads straight from the pool and buffers writes until
// SaveChanges, which writes users, profiles and their outbox rows in one
// transaction.
type UserRepository struct {
	db     DB
	staged []*entity.User
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, selectUserSQL+` WHERE u.id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, selectUserSQL+` WHERE u.username = $1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var (
		id, profileID       uuid.UUID
		username, email     string
		first, last         string
		createdAt, birthday time.Time
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(&id, &username, &email, &createdAt, &profileID, &first, &last, &birthday)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	profile := entity.RestoreProfile(profileID, id, first, last, birthday)
	return entity.RestoreUser(id, username, entity.RestoreUserEmail(email), profile, createdAt), nil
}

func (r *UserRepository) Add(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.staged = append(r.staged, u)
	return nil
}

// SaveChanges commits every staged aggregate atomically and reports the
// number of user and profile rows written. Staged changes are dropped
// whether or not the commit succeeds.
func (r *UserRepository) SaveChanges(ctx context.Context) (int, error) {
	staged := r.staged
	r.staged = nil
	if len(staged) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	written := 0
	for _, u := range staged {
		n, err := insertAggregate(ctx, tx, u)
		if err != nil {
			return 0, translateError(err)
		}
		written += n
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, translateError(err)
	}
	return written, nil
}

func insertAggregate(ctx context.Context, tx pgx.Tx, u *entity.User) (int, error) {
	p := u.Profile()
	if _, err := tx.Exec(ctx, insertUserSQL, u.ID(), u.Username(), u.Email().Value(), u.CreatedAt()); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, insertProfileSQL, p.ID(), p.UserID(), p.FirstName(), p.LastName(), p.DateOfBirth()); err != nil {
		return 0, err
	}
	msg, err := event.NewUserCreated(u).Message()
	if err != nil {
		return 0, fmt.Errorf("build outbox message: %w", err)
	}
	if _, err := tx.Exec(ctx, insertOutboxSQL, msg.ID, msg.AggregateID, msg.Type, msg.Version, msg.Payload, msg.CreatedAt); err != nil {
		return 0, err
	}
	return 2, nil
}

var (
	_ DB                        = (*pgxpool.Pool)(nil)
	_ repository.Store          = (*Store)(nil)
	_ repository.UserRepository = (*UserRepository)(nil)
)
