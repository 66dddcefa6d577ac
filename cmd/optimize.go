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

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/iodb"
	"github.com/gnames/gnbundle/internal/iooptimize"
	"github.com/gnames/gnbundle/internal/ioschema"
	"github.com/spf13/cobra"
)

// getOptimizeCmd returns the optimize command.
func getOptimizeCmd() *cobra.Command {
	var quiet bool
	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Remove orphan data and refresh store statistics",
		Long: `Clean up the content store.

Removes metadata, memberships and media records of deleted items and
terms, deletes media files no record points to, then runs VACUUM and
ANALYZE. Run it after undoing large imports.

Examples:
  gnbundle optimize
  gnbundle optimize --quiet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runOptimize(quiet)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	optimizeCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"do not show progress")
	return optimizeCmd
}

func runOptimize(quiet bool) error {
	ctx := context.Background()

	op := iodb.NewOperator()
	if err := op.Connect(ctx, cfg); err != nil {
		return err
	}
	defer op.Close()
	if err := ioschema.NewManager(op).Migrate(ctx); err != nil {
		return err
	}

	if !quiet {
		gn.Info("Optimization in progress, <em>it might take a while</em>...")
	}
	res, err := iooptimize.NewOptimizer(op, cfg.MediaRoot(), quiet).Optimize(ctx)
	if err != nil {
		return err
	}
	gn.Info("Removed <em>%s</em> orphan rows and <em>%s</em> media files (%s)",
		humanize.Comma(res.OrphanRows),
		humanize.Comma(int64(res.OrphanFiles)),
		humanize.IBytes(uint64(res.FreedBytes)),
	)
	return nil
}
