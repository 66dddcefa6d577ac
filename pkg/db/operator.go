package db

import (
	"context"

	"github.com/gnames/gnbundle/pkg/config"
	"gorm.io/gorm"
)

// Operator manages the connection to the database that backs the
// content store. SQLite and PostgreSQL are supported, both behind GORM.
type Operator interface {
	// Connect opens the database selected by cfg.Store.Driver.
	Connect(ctx context.Context, cfg *config.Config) error

	// Close closes the connection.
	Close() error

	// DB returns the GORM handle, nil before Connect.
	DB() *gorm.DB

	// Driver returns the name of the connected driver.
	Driver() string
}

// SchemaManager keeps the store schema up to date.
type SchemaManager interface {
	// Migrate creates or updates tables using GORM AutoMigrate.
	// It is idempotent.
	Migrate(ctx context.Context) error
}

// Optimizer performs store maintenance: it removes rows and media files
// nothing refers to and refreshes database statistics.
type Optimizer interface {
	Optimize(ctx context.Context) (*OptimizeReport, error)
}

// OptimizeReport summarizes an Optimize run.
type OptimizeReport struct {
	// OrphanRows is the number of removed or repaired rows.
	OrphanRows int64

	// OrphanFiles is the number of removed media files.
	OrphanFiles int

	// FreedBytes is the size of removed media files.
	FreedBytes int64
}
