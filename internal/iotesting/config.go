// Package iotesting provides shared test utilities: temporary
// configuration, a migrated SQLite store, media fixtures and archive
// builders. This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"testing"

	"github.com/gnames/gnbundle/internal/iodb"
	"github.com/gnames/gnbundle/internal/ioschema"
	"github.com/gnames/gnbundle/internal/iostore"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/db"
)

// TestConfig returns a default configuration whose home directory is a
// temporary directory of the test, so nothing touches the real
// ~/.config, ~/.cache or ~/.local/share.
func TestConfig(t *testing.T, opts ...config.Option) *config.Config {
	t.Helper()
	cfg := config.New()
	opts = append([]config.Option{config.OptHomeDir(t.TempDir())}, opts...)
	cfg.Update(opts)
	return cfg
}

// NewStore connects to a fresh SQLite store in the home directory of
// cfg and migrates it. The connection is closed when the test ends.
func NewStore(t *testing.T, cfg *config.Config) *iostore.Store {
	t.Helper()
	op := NewOperator(t, cfg)
	return iostore.New(op.DB(), cfg.MediaRoot())
}

// NewOperator is like NewStore but returns the connection itself.
func NewOperator(t *testing.T, cfg *config.Config) db.Operator {
	t.Helper()
	ctx := context.Background()

	op := iodb.NewOperator()
	if err := op.Connect(ctx, cfg); err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { op.Close() })

	if err := ioschema.NewManager(op).Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test store: %v", err)
	}
	return op
}
