package webserver

import (
	"errors"

	"github.com/nutriva/nutriva/internal/domain/preferences"
	"github.com/nutriva/nutriva/internal/domain/user"
	"github.com/nutriva/nutriva/internal/infrastructure/persistence/sqlite"
	apperrors "github.com/nutriva/nutriva/pkg/errors"
)

// toAppError converts domain, store and network errors into the
// structured form the page renders. Internals never reach the user; every
// unrecognized error collapses into a generic message.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperrors.Wrap(apperrors.CodeInvalidCredentials, "Incorrect email or password.", err)
	case errors.Is(err, user.ErrWeakPassword):
		return apperrors.Wrap(apperrors.CodeWeakPassword, "The password must be at least 6 characters.", err)
	case errors.Is(err, user.ErrPasswordMismatch):
		return apperrors.Wrap(apperrors.CodePasswordMismatch, "The passwords do not match.", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperrors.Wrap(apperrors.CodeEmailTaken, "This email is already registered.", err)
	case errors.Is(err, user.ErrEmailRequired),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrNameRequired),
		errors.Is(err, user.ErrNameTooLong),
		errors.Is(err, user.ErrPasswordTooLong):
		return apperrors.Wrap(apperrors.CodeValidationFailed, err.Error(), err)
	case errors.Is(err, preferences.ErrDietRequired),
		errors.Is(err, preferences.ErrUnknownDiet):
		return apperrors.Wrap(apperrors.CodeValidationFailed, "Please select a diet type.", err)
	case errors.Is(err, sqlite.ErrStoreUnavailable):
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "The system is unavailable. Please try again.", err)
	case errors.Is(err, ErrNetwork):
		return apperrors.Wrap(apperrors.CodeNetworkError, "The recipe service is unavailable. Please try again.", err)
	default:
		return apperrors.Wrap(apperrors.CodeInternal, "Something went wrong. Please try again.", err)
	}
}
