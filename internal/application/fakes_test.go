package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/users-service/internal/domain/entity"
	"github.com/oksasatya/users-service/internal/domain/repository"
)

// ---- in-memory store ----

type memStore struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*entity.User
	calls     int
	saves     int
	lookupErr error
	saveErr   error
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[uuid.UUID]*entity.User)}
}

func (s *memStore) Users() repository.UserRepository { return &memUnitOfWork{store: s} }

func (s *memStore) interactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memUnitOfWork struct {
	store  *memStore
	staged []*entity.User
}

func (u *memUnitOfWork) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if usr, ok := s.byID[id]; ok {
		return usr, nil
	}
	return nil, repository.ErrUserNotFound
}

func (u *memUnitOfWork) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, usr := range s.byID {
		if usr.Username() == username {
			return usr, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (u *memUnitOfWork) Add(_ context.Context, usr *entity.User) error {
	u.store.mu.Lock()
	u.store.calls++
	u.store.mu.Unlock()
	u.staged = append(u.staged, usr)
	return nil
}

func (u *memUnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	for _, usr := range u.staged {
		s.byID[usr.ID()] = usr
	}
	s.saves++
	n := len(u.staged) * 2
	u.staged = nil
	return n, nil
}

func (s *memStore) seed(usr *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[usr.ID()] = usr
}

// ---- notifier ----

type fakeNotifier struct {
	mu        sync.Mutex
	published []*entity.User
	ctxErr    error
	err       error
}

func (n *fakeNotifier) PublishUserCreated(ctx context.Context, u *entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ctxErr = ctx.Err()
	n.published = append(n.published, u)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.published)
}

// ---- cache ----

type fakeCache struct {
	items  map[uuid.UUID]UserDTO
	getErr error
	setErr error
	sets   int
}

func newFakeCache() *fakeCache { return &fakeCache{items: make(map[uuid.UUID]UserDTO)} }

func (c *fakeCache) Get(_ context.Context, id uuid.UUID) (*UserDTO, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	dto, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	return &dto, true, nil
}

func (c *fakeCache) Set(_ context.Context, dto UserDTO) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.items[uuid.MustParse(dto.ID)] = dto
	return nil
}
