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
	"github.com/gnames/gnbundle/internal/ioimport"
	"github.com/spf13/cobra"
)

// getPreviewCmd returns the preview command.
func getPreviewCmd() *cobra.Command {
	previewCmd := &cobra.Command{
		Use:   "preview ARCHIVE",
		Short: "Show what an import would do without changing the store",
		Long: `Parse an archive and report how many entities an import would create
or update, together with parser warnings. The store is not modified.

The preview is kept for the actor and shown again by the next import.

Examples:
  gnbundle preview animals.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPreview(args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return previewCmd
}

func runPreview(archive string) error {
	ctx := context.Background()
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := ioimport.New(st, nil, cfg).Preview(ctx, archive)
	if err != nil {
		return err
	}
	if err = openHistory(st).SavePreview(ctx, cfg.Actor, p); err != nil {
		return err
	}

	gn.Info("Preview of <em>%s</em> (%s bundle):", p.Source, p.Origin)
	printCounts(p.Counts)
	if s := p.Summary; s != nil {
		gn.Info("  rows: %d used, %d skipped", s.RowsUsed, s.RowsSkipped)
	}
	printList("Warnings", p.Warnings)
	return nil
}
