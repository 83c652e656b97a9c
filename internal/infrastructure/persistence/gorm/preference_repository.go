package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/nutriva/nutriva/internal/domain/preferences"
	"github.com/nutriva/nutriva/internal/ports/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository implements the preference repository interface using GORM
type PreferenceRepository struct {
	store Store
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(store Store) outbound.PreferenceRepository {
	return &PreferenceRepository{store: store}
}

// Upsert inserts or fully replaces the preference record for the entity's
// email in a single statement. Replacement covers every column, so a save
// never merges with the prior record.
func (r *PreferenceRepository) Upsert(ctx context.Context, p *preferences.Preferences) error {
	db, err := r.store.Handle(ctx)
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			UpdateAll: true,
		}).
		Create(PreferencesToModel(p))

	return result.Error
}

// FindByEmail finds the preference record for email, or (nil, nil) when
// none exists.
func (r *PreferenceRepository) FindByEmail(ctx context.Context, email string) (*preferences.Preferences, error) {
	db, err := r.store.Handle(ctx)
	if err != nil {
		return nil, err
	}

	var model PreferenceModel
	result := db.WithContext(ctx).First(&model, "email = ?", strings.ToLower(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return ModelToPreferences(&model), nil
}
