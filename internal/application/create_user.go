package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/internal/domain/entity"
	"github.com/oksasatya/users-service/internal/domain/repository"
)

const notifyTimeout = 5 * time.Second

type CreateUserCommand struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}

// CreateUserHandler validates and builds the aggregate, checks username
// uniqueness, commits it and announces it.
type CreateUserHandler struct {
	store    repository.Store
	notifier UserNotifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewCreateUserHandler wires the handler. A nil notifier leaves announcing
// new users entirely to the outbox relay.
func NewCreateUserHandler(store repository.Store, notifier UserNotifier, logger *logrus.Logger) *CreateUserHandler {
	return &CreateUserHandler{store: store, notifier: notifier, logger: logger, now: time.Now}
}

func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (Result[uuid.UUID], error) {
	user, err := h.build(cmd)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			return Failure[uuid.UUID](Validation(verr.Field, verr.Message)), nil
		}
		return Result[uuid.UUID]{}, err
	}

	users := h.store.Users()
	if _, err := users.GetByUsername(ctx, user.Username()); err == nil {
		return Failure[uuid.UUID](Conflict(MsgUsernameExists)), nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return Result[uuid.UUID]{}, &PersistenceError{Op: "get user by username", Err: err}
	}

	if err := users.Add(ctx, user); err != nil {
		return Result[uuid.UUID]{}, &PersistenceError{Op: "add user", Err: err}
	}
	if _, err := users.SaveChanges(ctx); err != nil {
		// Concurrent creates race past the pre-check; the unique index decides.
		if errors.Is(err, repository.ErrUsernameTaken) {
			return Failure[uuid.UUID](Conflict(MsgUsernameExists)), nil
		}
		return Result[uuid.UUID]{}, &PersistenceError{Op: "save changes", Err: err}
	}

	h.notify(ctx, user)
	return Success(user.ID()), nil
}

func (h *CreateUserHandler) build(cmd CreateUserCommand) (*entity.User, error) {
	now := h.now()
	email, err := entity.NewUserEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	profile, err := entity.NewProfile(cmd.FirstName, cmd.LastName, cmd.DateOfBirth, now)
	if err != nil {
		return nil, err
	}
	return entity.NewUser(cmd.Username, email, profile, now)
}

// notify runs after the commit on a context detached from the request, so a
// client disconnect does not drop the announcement. Failures are left to the
// outbox relay.
func (h *CreateUserHandler) notify(ctx context.Context, u *entity.User) {
	if h.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := h.notifier.PublishUserCreated(nctx, u); err != nil {
		notificationFailures.Inc()
		if h.logger != nil {
			h.logger.WithError(err).WithField("user_id", u.ID().String()).
				Warn("publish user created failed; outbox relay will retry")
		}
	}
}

var _ Handler[CreateUserCommand, uuid.UUID] = (*CreateUserHandler)(nil)
