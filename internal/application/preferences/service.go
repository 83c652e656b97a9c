// Package preferences provides the application layer for dietary preferences
package preferences

import (
	"context"
	"fmt"

	"github.com/nutriva/nutriva/internal/domain/preferences"
	"github.com/nutriva/nutriva/internal/ports/outbound"
	"go.uber.org/zap"
)

// Session is the slice of per-tab state the preferences flow touches.
type Session interface {
	ClearNeedsPreferences()
	ClearEditingPreferences()
}

// Service implements the preference save and load use cases
type Service struct {
	prefs  outbound.PreferenceRepository
	logger *zap.Logger
}

// NewService creates a new preferences service
func NewService(prefs outbound.PreferenceRepository, logger *zap.Logger) *Service {
	return &Service{
		prefs:  prefs,
		logger: logger.Named("preferences-service"),
	}
}

// Save upserts the full preference record for email with a fresh
// UpdatedAt, then clears the session's needs-preferences and
// editing-preferences flags. After a successful save with a chosen diet
// the session always reads as preference-complete.
func (s *Service) Save(ctx context.Context, sess Session, email string, diet preferences.Diet, intolerances []string) (*preferences.Preferences, error) {
	record, err := preferences.New(email, diet, intolerances)
	if err != nil {
		return nil, err
	}

	if err := s.prefs.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	sess.ClearNeedsPreferences()
	sess.ClearEditingPreferences()

	s.logger.Info("Preferences saved",
		zap.String("email", record.Email()),
		zap.String("diet", string(record.Diet())),
		zap.Int("intolerances", len(record.Intolerances())),
	)

	return record, nil
}

// Get returns the stored preference record for email, or nil when none
// exists. Used to pre-fill the preferences form.
func (s *Service) Get(ctx context.Context, email string) (*preferences.Preferences, error) {
	record, err := s.prefs.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up preferences: %w", err)
	}
	return record, nil
}
