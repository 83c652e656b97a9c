package preferences

import "errors"

// Domain errors for preference records

var (
	ErrEmailRequired = errors.New("email is required")
	ErrDietRequired  = errors.New("a diet must be selected")
	ErrUnknownDiet   = errors.New("unknown diet")
)
