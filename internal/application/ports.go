package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/users-service/internal/domain/entity"
)

// UserNotifier announces a created user to external consumers.
type UserNotifier interface {
	PublishUserCreated(ctx context.Context, u *entity.User) error
}

// UserViewCache stores projections for the read path. A miss is (nil, false, nil).
type UserViewCache interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, bool, error)
	Set(ctx context.Context, dto UserDTO) error
}
