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
	"fmt"
	"slices"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/iodb"
	"github.com/gnames/gnbundle/internal/iohistory"
	"github.com/gnames/gnbundle/internal/ioschema"
	"github.com/gnames/gnbundle/internal/iostore"
	"github.com/gnames/gnbundle/pkg/bundle"
)

// maxShown limits warnings and errors printed to the terminal.
const maxShown = 20

// openStore connects to the configured store and brings its schema up
// to date. The returned function closes the connection.
func openStore(ctx context.Context) (*iostore.Store, func(), error) {
	op := iodb.NewOperator()
	if err := op.Connect(ctx, cfg); err != nil {
		return nil, nil, err
	}
	if err := ioschema.NewManager(op).Migrate(ctx); err != nil {
		op.Close()
		return nil, nil, err
	}
	return iostore.New(op.DB(), cfg.MediaRoot()), func() { op.Close() }, nil
}

func openHistory(st *iostore.Store) bundle.History {
	return iohistory.New(st, st, cfg)
}

// newProgressBar creates a progress bar with consistent settings.
func newProgressBar(total int, prefix string) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}

func printCounts(c bundle.Counts) {
	rows := []struct {
		name string
		cnt  bundle.Count
	}{
		{"categories", c.Categories},
		{"wordsets", c.Wordsets},
		{"word images", c.WordImages},
		{"words", c.Words},
		{"audio", c.Audio},
		{"media files", c.Media},
	}
	for _, r := range rows {
		if r.cnt.Created+r.cnt.Updated == 0 {
			continue
		}
		gn.Info("  %-12s <em>%s</em> new, %s existing",
			r.name,
			humanize.Comma(int64(r.cnt.Created)),
			humanize.Comma(int64(r.cnt.Updated)),
		)
	}
}

func printList(title string, list []string) {
	if len(list) == 0 {
		return
	}
	gn.Warn("%s (%d):", title, len(list))
	for _, s := range shownLines(list) {
		gn.Warn("  %s", s)
	}
}

// shownLines caps a list at maxShown lines and tells how many more
// there are.
func shownLines(list []string) []string {
	if len(list) <= maxShown {
		return list
	}
	res := slices.Clone(list[:maxShown])
	return append(res, fmt.Sprintf("... %d more", len(list)-maxShown))
}

func printResult(res *bundle.Result) {
	gn.Info("%s", res.Message)
	printCounts(res.Counts)
	if s := res.Summary; s != nil {
		gn.Info(
			"  files: %d found, %d used, %d skipped; rows: %d used, %d skipped",
			s.FilesFound, s.FilesUsed, s.FilesSkipped, s.RowsUsed, s.RowsSkipped,
		)
		if s.WarningsSuppressed > 0 {
			gn.Info("  %d more warnings were suppressed", s.WarningsSuppressed)
		}
	}
	printList("Warnings", res.Warnings)
	printList("Errors", res.Errors)
	if res.HistoryID != "" {
		gn.Info("History id: <em>%s</em>", res.HistoryID)
	}
}
