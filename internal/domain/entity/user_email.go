package entity

import (
	"regexp"
	"strings"
	"unicode"
)

const maxEmailLength = 255

// RE2's \s is ASCII only; other Unicode spaces are rejected separately.
var emailPattern = regexp.MustCompile(`(?i)^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserEmail is an immutable, validated email address.
// The zero value is not a valid email; build one with NewUserEmail.
type UserEmail struct {
	value string
}

// NewUserEmail validates raw and returns its normalized form
// (surrounding whitespace trimmed, lower-cased).
func NewUserEmail(raw string) (UserEmail, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return UserEmail{}, invalid("email", "Email cannot be empty")
	}
	if strings.IndexFunc(v, unicode.IsSpace) >= 0 || !emailPattern.MatchString(v) {
		return UserEmail{}, invalid("email", "Invalid email format")
	}
	if len(v) > maxEmailLength {
		return UserEmail{}, invalid("email", "Email must be at most 255 characters")
	}
	return UserEmail{value: strings.ToLower(v)}, nil
}

// RestoreUserEmail rebuilds an email already validated before it was stored.
func RestoreUserEmail(v string) UserEmail { return UserEmail{value: v} }

func (e UserEmail) Value() string { return e.value }

func (e UserEmail) String() string { return e.value }

func (e UserEmail) Equals(other UserEmail) bool { return e.value == other.value }

func (e UserEmail) IsZero() bool { return e.value == "" }
