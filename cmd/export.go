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
	"github.com/gnames/gnbundle/internal/ioexport"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/spf13/cobra"
)

// getExportCmd returns the export command.
func getExportCmd() *cobra.Command {
	var opts bundle.ExportOptions

	exportCmd := &cobra.Command{
		Use:   "export DEST",
		Short: "Export categories and their content into a bundle",
		Long: `Write a native bundle: manifest.json plus media files.

Without --root every category is exported, otherwise the given
categories and all their descendants. Word images of the exported
categories are always included. With --full the words of a wordset and
their audio are added.

Examples:
  gnbundle export all.zip
  gnbundle export animals.zip --root animals
  gnbundle export basic.zip --full --wordset basic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runExport(args[0], opts)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	exportCmd.Flags().StringSliceVarP(&opts.Roots, "root", "r", nil,
		"root category slugs (default all)")
	exportCmd.Flags().BoolVarP(&opts.Full, "full", "f", false,
		"include wordset, words and audio")
	exportCmd.Flags().StringVarP(&opts.Wordset, "wordset", "w", "",
		"wordset slug for --full")

	return exportCmd
}

func runExport(dest string, opts bundle.ExportOptions) error {
	ctx := context.Background()
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	stats, err := ioexport.New(st, cfg).Export(ctx, dest, opts)
	if err != nil {
		return err
	}

	gn.Info("Exported to <em>%s</em>", dest)
	gn.Info("  categories %d, word images %d, words %d, audio %d",
		stats.Categories, stats.WordImages, stats.Words, stats.Audio)
	gn.Info("  media files %s, %s",
		humanize.Comma(int64(stats.MediaFiles)),
		humanize.IBytes(uint64(stats.MediaBytes)))
	if stats.MediaBytes > cfg.Limits.ExportWarnBytes {
		gn.Warn("Bundle media take <warn>%s</warn>, importing it may be slow",
			humanize.IBytes(uint64(stats.MediaBytes)))
	}
	printList("Skipped media", stats.Skipped)
	return nil
}
