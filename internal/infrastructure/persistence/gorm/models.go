// Package gorm provides GORM model definitions and repositories for the
// local store: two tables keyed by email, users and preferences.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UserModel represents the users table. Email is the primary key; the
// name column carries a non-unique auxiliary index.
type UserModel struct {
	Email     string `gorm:"type:varchar(255);primaryKey"`
	Name      string `gorm:"type:varchar(255);not null;index"`
	Password  string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (UserModel) TableName() string {
	return "users"
}

// PreferenceModel represents the preferences table. Email is both the
// primary key and a logical reference to a users row; the reference is
// enforced by application logic, not by the schema.
type PreferenceModel struct {
	Email        string      `gorm:"type:varchar(255);primaryKey"`
	Diet         string      `gorm:"type:varchar(50)"`
	Intolerances StringSlice `gorm:"type:json"`
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (PreferenceModel) TableName() string {
	return "preferences"
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}
