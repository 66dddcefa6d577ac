// Package ioschema implements SchemaManager interface for
// store schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/gnames/gnbundle/pkg/db"
	"github.com/gnames/gnbundle/pkg/schema"
)

// manager implements the db.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) db.SchemaManager {
	return &manager{operator: op}
}

// Migrate creates missing tables and columns. Safe to run on every
// start.
func (m *manager) Migrate(ctx context.Context) error {
	gormDB := m.operator.DB()
	if gormDB == nil {
		return NotConnectedError()
	}

	if err := schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return MigrateSchemaError(err)
	}
	slog.Debug("Store schema is up to date", "driver", m.operator.Driver())
	return nil
}
