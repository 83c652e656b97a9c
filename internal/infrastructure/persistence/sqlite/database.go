// Package sqlite provides SQLite database setup for the local store
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gormModels "github.com/nutriva/nutriva/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrStoreUnavailable reports that the underlying engine could not be
// opened. Once open fails, every operation for this process fails the
// same way.
var ErrStoreUnavailable = errors.New("local store unavailable")

// Database is the single shared handle to the local store. The engine is
// opened lazily on first use; concurrent callers share one open attempt
// and one connection, never duplicate opens.
type Database struct {
	path     string
	logLevel logger.LogLevel

	once sync.Once
	db   *gorm.DB
	err  error
}

// NewDatabase creates an unopened handle for the store at path. An empty
// path selects an in-memory database.
func NewDatabase(path string, logLevel logger.LogLevel) *Database {
	if path == "" {
		path = ":memory:"
	}
	return &Database{path: path, logLevel: logLevel}
}

// Handle returns the shared gorm handle, opening and migrating the store
// on first call. Every repository operation goes through here, so callers
// never sequence initialization themselves.
func (d *Database) Handle(ctx context.Context) (*gorm.DB, error) {
	d.once.Do(func() {
		d.db, d.err = d.open()
	})

	if d.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, d.err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return d.db, nil
}

func (d *Database) open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(d.path), &gorm.Config{
		Logger: logger.Default.LogMode(d.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Establishes the users and preferences tables on first creation,
	// including the unique email keys and the auxiliary name index.
	err = db.AutoMigrate(
		&gormModels.UserModel{},
		&gormModels.PreferenceModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
