// Package user defines the user domain entity
package user

import (
	"strings"
	"time"
)

// User represents a registered account. Records are keyed by email and are
// insert-only: they are never mutated or deleted after registration.
type User struct {
	email     string
	name      string
	password  string
	createdAt time.Time
}

// NewUser creates a new user with validation. The email is normalized to
// lower case and the name is trimmed before storage.
func NewUser(email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if err := validateName(name); err != nil {
		return nil, err
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	return &User{
		email:     email,
		name:      name,
		password:  password,
		createdAt: time.Now(),
	}, nil
}

// Restore rebuilds a user from persisted state without re-validating it.
func Restore(email, name, password string, createdAt time.Time) *User {
	return &User{
		email:     email,
		name:      name,
		password:  password,
		createdAt: createdAt,
	}
}

// Email returns the user's email, the record's unique key.
func (u *User) Email() string {
	return u.email
}

// Name returns the user's display name.
func (u *User) Name() string {
	return u.name
}

// Password returns the stored password.
func (u *User) Password() string {
	return u.password
}

// CreatedAt returns when the account was registered.
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// CheckPassword reports whether the provided password matches exactly.
func (u *User) CheckPassword(password string) bool {
	return u.password == password
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ErrInvalidEmail
	}

	if len(email) > 255 {
		return ErrInvalidEmail
	}

	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}

	if len(name) > 100 {
		return ErrNameTooLong
	}

	return nil
}

// ValidatePassword enforces the minimum password length. It is exported so
// the auth flow can reject weak passwords before building an entity.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrWeakPassword
	}

	if len(password) > 128 {
		return ErrPasswordTooLong
	}

	return nil
}
