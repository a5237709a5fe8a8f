package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oksasatya/users-service/internal/domain/entity"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned by SaveChanges when the storage unique
	// constraint on username rejects the commit.
	ErrUsernameTaken = errors.New("username already taken")
)

// Store opens request-scoped units of work. Implementations are safe for
// concurrent use; the repositories they return are not.
type Store interface {
	Users() UserRepository
}

// UserRepository defines the persistence contract for the User aggregate.
// Add only stages; nothing is durable until SaveChanges returns nil.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Add(ctx context.Context, u *entity.User) error
	SaveChanges(ctx context.Context) (int, error)
}
