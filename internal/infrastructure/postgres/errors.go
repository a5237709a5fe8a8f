package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/users-service/internal/domain/repository"
)

const (
	uniqueViolation    = "23505"
	usernameConstraint = "users_username_key"
)

// translateError maps storage errors onto repository sentinels.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == usernameConstraint {
		return repository.ErrUsernameTaken
	}
	return err
}
