/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/iodb"
	"github.com/gnames/gnbundle/internal/ioschema"
	"github.com/spf13/cobra"
)

// getMigrateCmd returns the migrate command.
func getMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema",
		Long: `Create missing tables, columns and indexes of the content store.

Other commands do this on their own, migrate is useful to prepare an
empty PostgreSQL database or to check the connection settings.
Existing data are never removed.

Examples:
  gnbundle migrate
  GNBUNDLE_STORE_DRIVER=postgres gnbundle migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMigrate()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return migrateCmd
}

func runMigrate() error {
	ctx := context.Background()

	op := iodb.NewOperator()
	if err := op.Connect(ctx, cfg); err != nil {
		return err
	}
	defer op.Close()

	if op.Driver() == "postgres" {
		gn.Info("Connected to <em>%s@%s:%d/%s</em>",
			cfg.Store.User, cfg.Store.Host, cfg.Store.Port, cfg.Store.Database)
	} else {
		gn.Info("Using SQLite store <em>%s</em>", cfg.SQLitePath())
	}

	if err := ioschema.NewManager(op).Migrate(ctx); err != nil {
		return err
	}
	gn.Info("Schema is up to date")
	return nil
}
