package gorm

import (
	"github.com/nutriva/nutriva/internal/domain/preferences"
	"github.com/nutriva/nutriva/internal/domain/user"
)

// UserToModel converts a user entity to its GORM model
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		Email:     u.Email(),
		Name:      u.Name(),
		Password:  u.Password(),
		CreatedAt: u.CreatedAt(),
	}
}

// ModelToUser converts a GORM model back to a user entity
func ModelToUser(m *UserModel) *user.User {
	return user.Restore(m.Email, m.Name, m.Password, m.CreatedAt)
}

// PreferencesToModel converts a preference entity to its GORM model
func PreferencesToModel(p *preferences.Preferences) *PreferenceModel {
	return &PreferenceModel{
		Email:        p.Email(),
		Diet:         string(p.Diet()),
		Intolerances: StringSlice(p.Intolerances()),
		UpdatedAt:    p.UpdatedAt(),
	}
}

// ModelToPreferences converts a GORM model back to a preference entity
func ModelToPreferences(m *PreferenceModel) *preferences.Preferences {
	return preferences.Restore(m.Email, preferences.Diet(m.Diet), []string(m.Intolerances), m.UpdatedAt)
}
