package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/internal/domain/repository"
)

type GetUserByIDQuery struct {
	ID uuid.UUID
}

// GetUserByIDHandler loads a user and projects it. The cache is optional and
// only ever best-effort.
type GetUserByIDHandler struct {
	store  repository.Store
	cache  UserViewCache
	logger *logrus.Logger
}

func NewGetUserByIDHandler(store repository.Store, cache UserViewCache, logger *logrus.Logger) *GetUserByIDHandler {
	return &GetUserByIDHandler{store: store, cache: cache, logger: logger}
}

func (h *GetUserByIDHandler) Handle(ctx context.Context, q GetUserByIDQuery) (Result[UserDTO], error) {
	if h.cache != nil {
		dto, ok, err := h.cache.Get(ctx, q.ID)
		if err != nil {
			h.cacheFailed("get", q.ID, err)
		} else if ok {
			return Success(*dto), nil
		}
	}

	u, err := h.store.Users().GetByID(ctx, q.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Failure[UserDTO](NotFound(MsgUserNotFound)), nil
	}
	if err != nil {
		return Result[UserDTO]{}, &PersistenceError{Op: "get user by id", Err: err}
	}

	dto := ToUserDTO(u)
	if h.cache != nil {
		if err := h.cache.Set(ctx, dto); err != nil {
			h.cacheFailed("set", q.ID, err)
		}
	}
	return Success(dto), nil
}

func (h *GetUserByIDHandler) cacheFailed(op string, id uuid.UUID, err error) {
	cacheErrors.WithLabelValues(op).Inc()
	if h.logger != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"user_id": id.String(), "op": op}).Warn("user view cache failed")
	}
}

var _ Handler[GetUserByIDQuery, UserDTO] = (*GetUserByIDHandler)(nil)
