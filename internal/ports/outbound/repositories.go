// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with the local store
package outbound

import (
	"context"

	"github.com/nutriva/nutriva/internal/domain/preferences"
	"github.com/nutriva/nutriva/internal/domain/user"
)

// UserRepository defines the interface for user persistence.
// User records are insert-only: there is no update or delete path.
type UserRepository interface {
	// Create inserts a new user. A record with the same email must fail
	// with user.ErrEmailTaken; the store's unique constraint is the
	// single source of truth for duplicate detection.
	Create(ctx context.Context, u *user.User) error

	// FindByEmail returns the user for email, or (nil, nil) when no such
	// record exists. "Not found" is not an error.
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// PreferenceRepository defines the interface for preference persistence.
type PreferenceRepository interface {
	// Upsert inserts or fully replaces the preference record for the
	// record's email. There is no field-level merge with a prior record.
	Upsert(ctx context.Context, p *preferences.Preferences) error

	// FindByEmail returns the preference record for email, or (nil, nil)
	// when none exists.
	FindByEmail(ctx context.Context, email string) (*preferences.Preferences, error)
}
