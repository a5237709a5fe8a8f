package entity

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
)

// ErrProfileOwned is returned when a profile already bound to a user is reused.
var ErrProfileOwned = errors.New("profile already belongs to a user")

// User is the aggregate root for the user domain. It exclusively owns its
// Profile; both share the same lifetime.
type User struct {
	id        uuid.UUID
	username  string
	email     UserEmail
	profile   Profile
	createdAt time.Time
}

// NewUser validates the username, generates the user id and binds it to the
// profile's owner reference.
func NewUser(username string, email UserEmail, profile Profile, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "Username cannot be empty")
	}
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength {
		return nil, invalid("username", "Username must be at least 3 characters")
	}
	if n > maxUsernameLength {
		return nil, invalid("username", "Username must be at most 50 characters")
	}
	if email.IsZero() {
		return nil, invalid("email", "Email cannot be empty")
	}
	if profile.id == uuid.Nil {
		return nil, invalid("profile", "Profile is required")
	}
	if profile.userID != uuid.Nil {
		return nil, ErrProfileOwned
	}

	id := uuid.New()
	return &User{
		id:        id,
		username:  username,
		email:     email,
		profile:   profile.attach(id),
		createdAt: now.UTC(),
	}, nil
}

// RestoreUser rebuilds a stored aggregate without re-running validation.
func RestoreUser(id uuid.UUID, username string, email UserEmail, profile Profile, createdAt time.Time) *User {
	return &User{id: id, username: username, email: email, profile: profile, createdAt: createdAt}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) Email() UserEmail     { return u.email }
func (u *User) Profile() Profile     { return u.profile }
func (u *User) CreatedAt() time.Time { return u.createdAt }
