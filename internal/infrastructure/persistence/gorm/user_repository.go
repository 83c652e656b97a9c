package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/nutriva/nutriva/internal/domain/user"
	"github.com/nutriva/nutriva/internal/ports/outbound"
	"gorm.io/gorm"
)

// Store hands out the shared database handle, opening it on first use.
// Implemented by the sqlite package.
type Store interface {
	Handle(ctx context.Context) (*gorm.DB, error)
}

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	store Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(store Store) outbound.UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a new user. The table's unique primary key is the single
// source of truth for duplicate detection; a constraint violation maps to
// user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	db, err := r.store.Handle(ctx)
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).Create(UserToModel(u))
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return user.ErrEmailTaken
		}
		return result.Error
	}

	return nil
}

// FindByEmail finds a user by email. A missing record is not an error:
// it returns (nil, nil).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	db, err := r.store.Handle(ctx)
	if err != nil {
		return nil, err
	}

	var model UserModel
	result := db.WithContext(ctx).First(&model, "email = ?", strings.ToLower(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key")
}
