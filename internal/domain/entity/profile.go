package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxNameLength = 100

// Profile holds the personal details owned by exactly one User.
// Its UserID is unset until the profile is handed to NewUser.
type Profile struct {
	id          uuid.UUID
	userID      uuid.UUID
	firstName   string
	lastName    string
	dateOfBirth time.Time
}

// NewProfile validates the personal details against now.
func NewProfile(firstName, lastName string, dateOfBirth, now time.Time) (Profile, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return Profile{}, invalid("firstName", "First name cannot be empty")
	}
	if utf8.RuneCountInString(firstName) > maxNameLength {
		return Profile{}, invalid("firstName", "First name must be at most 100 characters")
	}
	if lastName == "" {
		return Profile{}, invalid("lastName", "Last name cannot be empty")
	}
	if utf8.RuneCountInString(lastName) > maxNameLength {
		return Profile{}, invalid("lastName", "Last name must be at most 100 characters")
	}
	if dateOfBirth.IsZero() || !dateOfBirth.Before(now) {
		return Profile{}, invalid("dateOfBirth", "Date of birth must be in the past")
	}
	return Profile{
		id:          uuid.New(),
		firstName:   firstName,
		lastName:    lastName,
		dateOfBirth: dateOfBirth,
	}, nil
}

// RestoreProfile rebuilds a stored profile without re-running validation.
func RestoreProfile(id, userID uuid.UUID, firstName, lastName string, dateOfBirth time.Time) Profile {
	return Profile{id: id, userID: userID, firstName: firstName, lastName: lastName, dateOfBirth: dateOfBirth}
}

func (p Profile) ID() uuid.UUID          { return p.id }
func (p Profile) UserID() uuid.UUID      { return p.userID }
func (p Profile) FirstName() string      { return p.firstName }
func (p Profile) LastName() string       { return p.lastName }
func (p Profile) DateOfBirth() time.Time { return p.dateOfBirth }

func (p Profile) attach(userID uuid.UUID) Profile {
	p.userID = userID
	return p
}
