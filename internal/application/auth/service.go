// Package auth provides the application layer for login and registration
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nutriva/nutriva/internal/domain/user"
	"github.com/nutriva/nutriva/internal/ports/outbound"
	"go.uber.org/zap"
)

// Session is the per-tab authentication state the auth flow writes to.
// It is passed explicitly on every call; the flow holds no session state
// of its own.
type Session interface {
	SetIdentity(email, name string)
	MarkNeedsPreferences()
	ClearNeedsPreferences()
	Clear()
}

// Service implements the login and registration use cases
type Service struct {
	users    outbound.UserRepository
	prefs    outbound.PreferenceRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new auth service
func NewService(
	users outbound.UserRepository,
	prefs outbound.PreferenceRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		prefs:    prefs,
		validate: validator.New(),
		logger:   logger.Named("auth-service"),
	}
}

// LoginCommand contains user login data
type LoginCommand struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterCommand contains user registration data
type RegisterCommand struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

// Result reports a successful authentication and where the caller should
// navigate next.
type Result struct {
	Email            string
	Name             string
	NeedsPreferences bool
}

// Login authenticates a user against the local store. An unknown email
// and a wrong password both fail with user.ErrInvalidCredentials; the
// caller learns nothing about which one it was. On success the session
// identity is set and NeedsPreferences reflects the stored record.
func (s *Service) Login(ctx context.Context, sess Session, cmd LoginCommand) (*Result, error) {
	cmd.Email = normalizeEmail(cmd.Email)

	if err := s.validate.Struct(cmd); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	account, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if account == nil || !account.CheckPassword(cmd.Password) {
		s.logger.Info("Login rejected", zap.String("email", cmd.Email))
		return nil, user.ErrInvalidCredentials
	}

	record, err := s.prefs.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up preferences: %w", err)
	}

	needsPreferences := !record.Complete()

	sess.SetIdentity(account.Email(), account.Name())
	if needsPreferences {
		sess.MarkNeedsPreferences()
	} else {
		sess.ClearNeedsPreferences()
	}

	s.logger.Info("User logged in",
		zap.String("email", account.Email()),
		zap.Bool("needs_preferences", needsPreferences),
	)

	return &Result{
		Email:            account.Email(),
		Name:             account.Name(),
		NeedsPreferences: needsPreferences,
	}, nil
}

// Register creates a new user account. Duplicate emails are detected by
// the store's unique key on insert, not by a separate read-then-write
// check, so two racing registrations cannot both succeed.
func (s *Service) Register(ctx context.Context, sess Session, cmd RegisterCommand) (*Result, error) {
	cmd.Email = normalizeEmail(cmd.Email)
	cmd.Name = strings.TrimSpace(cmd.Name)

	if err := s.validate.Struct(cmd); err != nil {
		return nil, validationError(err)
	}

	if err := user.ValidatePassword(cmd.Password); err != nil {
		return nil, err
	}

	if cmd.Password != cmd.ConfirmPassword {
		return nil, user.ErrPasswordMismatch
	}

	account, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, account); err != nil {
		return nil, err
	}

	sess.SetIdentity(account.Email(), account.Name())
	sess.MarkNeedsPreferences()

	s.logger.Info("User registered", zap.String("email", account.Email()))

	return &Result{
		Email:            account.Email(),
		Name:             account.Name(),
		NeedsPreferences: true,
	}, nil
}

// Logout clears the session. All keys go at once; there is no partial
// teardown.
func (s *Service) Logout(sess Session) {
	sess.Clear()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}

	switch fields[0].Field() {
	case "Name":
		return user.ErrNameRequired
	case "Email":
		return user.ErrInvalidEmail
	case "Password":
		return user.ErrWeakPassword
	default:
		return user.ErrPasswordMismatch
	}
}
