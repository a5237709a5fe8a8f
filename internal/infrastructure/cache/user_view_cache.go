package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/users-service/internal/application"
	"github.com/oksasatya/users-service/pkg/helpers"
)

const keyPrefix = "user:view:"

// UserViewCache keeps user projections in Redis for the read path.
type UserViewCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewUserViewCache(rdb redis.Cmdable, ttl time.Duration) *UserViewCache {
	return &UserViewCache{rdb: rdb, ttl: ttl}
}

func Key(id uuid.UUID) string { return keyPrefix + id.String() }

func (c *UserViewCache) Get(ctx context.Context, id uuid.UUID) (*application.UserDTO, bool, error) {
	var dto application.UserDTO
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, Key(id), &dto)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", id, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &dto, true, nil
}

func (c *UserViewCache) Set(ctx context.Context, dto application.UserDTO) error {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return helpers.RedisSetJSON(ctx, c.rdb, Key(id), dto, c.ttl)
}

var _ application.UserViewCache = (*UserViewCache)(nil)
