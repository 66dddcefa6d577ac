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
	"errors"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/iofs"
	"github.com/gnames/gnbundle/internal/ioimport"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/spf13/cobra"
)

// errPartial is returned when some entities failed. The details are
// already printed.
var errPartial = errors.New("finished with errors")

// getImportCmd returns the import command.
func getImportCmd() *cobra.Command {
	var (
		wordsetMode string
		wordset     string
		renamesFile string
		quiet       bool
	)

	importCmd := &cobra.Command{
		Use:   "import ARCHIVE",
		Short: "Import a bundle archive into the content store",
		Long: `Import a zip archive into the content store.

A native bundle carries manifest.json at the archive root. Any other
archive is read as quiz tables: CSV/TSV files at the root plus media in
images/ and audio/ (or audios/) folders.

Existing categories, wordsets and items are matched by slug and updated,
missing ones are created. Problems with single entities are reported and
do not stop the import. The import is recorded in history and can be
reverted with 'gnbundle undo'.

Wordset modes:
  create  create or reuse the wordsets named in the bundle (default)
  assign  put every word into the existing wordset given by --wordset

Examples:
  gnbundle import animals.zip
  gnbundle import words.zip --wordset-mode assign --wordset core
  gnbundle import words.zip --renames renames.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := bundle.ImportOptions{
				WordsetMode: wordsetMode,
				Wordset:     wordset,
				Actor:       cfg.Actor,
			}
			err := runImport(args[0], opts, renamesFile, quiet)
			if err != nil && !errors.Is(err, errPartial) {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	importCmd.Flags().StringVarP(&wordsetMode, "wordset-mode", "m",
		bundle.WordsetModeCreate, "create or assign")
	importCmd.Flags().StringVarP(&wordset, "wordset", "w", "",
		"existing wordset slug for the assign mode")
	importCmd.Flags().StringVarP(&renamesFile, "renames", "r", "",
		"YAML file mapping wordset slugs to new names")
	importCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"do not show the progress bar")

	return importCmd
}

func runImport(
	archive string,
	opts bundle.ImportOptions,
	renamesFile string,
	quiet bool,
) error {
	ctx := context.Background()

	if renamesFile != "" {
		renames, err := iofs.ReadRenames(renamesFile)
		if err != nil {
			return err
		}
		opts.Renames = renames
	}

	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	hist := openHistory(st)

	p, err := hist.TakePreview(ctx, opts.Actor)
	if err != nil {
		return err
	}
	if p != nil && p.Source == filepath.Base(archive) {
		gn.Info("Importing <em>%s</em> previewed at %s",
			p.Source, p.Time.Format(time.DateTime))
	}

	var bar *pb.ProgressBar
	if !quiet {
		opts.Progress = func(total, done int) {
			if bar == nil {
				bar = newProgressBar(total, "Importing ")
			}
			bar.SetCurrent(int64(done))
		}
	}

	gn.Info("Importing <em>%s</em>...", filepath.Base(archive))
	res, err := ioimport.New(st, hist, cfg).Import(ctx, archive, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	printResult(res)
	if !res.OK {
		return errPartial
	}
	return nil
}
