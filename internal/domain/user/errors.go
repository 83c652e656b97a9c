package user

import "errors"

// Domain errors for user accounts and authentication

var (
	// Entity validation errors
	ErrEmailRequired   = errors.New("email is required")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrNameRequired    = errors.New("name is required")
	ErrNameTooLong     = errors.New("name must not exceed 100 characters")
	ErrWeakPassword    = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong = errors.New("password must not exceed 128 characters")

	// Registration errors
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email is already registered")

	// Login failures are deliberately indistinguishable: an unknown email
	// and a wrong password both yield the same error.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
