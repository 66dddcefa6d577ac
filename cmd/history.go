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
	"fmt"
	"io"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// getHistoryCmd returns the history command.
func getHistoryCmd() *cobra.Command {
	var format string

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent imports and undos",
		Long: `List the capped history of imports and undos, most recent first.

Use the id of an import with 'gnbundle undo'.

Examples:
  gnbundle history
  gnbundle history --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runHistory(cmd.OutOrStdout(), format)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	historyCmd.Flags().StringVarP(&format, "format", "f", "text",
		"output format: text, json or yaml")
	return historyCmd
}

func runHistory(w io.Writer, format string) error {
	ctx := context.Background()
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	list, err := openHistory(st).List(ctx)
	if err != nil {
		return err
	}
	return writeHistory(w, list, format)
}

func writeHistory(w io.Writer, list []bundle.HistoryEntry, format string) error {
	switch format {
	case "json":
		enc := gnfmt.GNjson{Pretty: true}
		data, err := enc.Encode(list)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		return yaml.NewEncoder(w).Encode(list)
	}

	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "History is empty")
		return err
	}
	for _, e := range list {
		status := "ok"
		if !e.OK {
			status = "errors"
		}
		if e.UndoneAt != nil {
			status += ", undone " + e.UndoneAt.Format(time.DateTime)
		}
		_, err := fmt.Fprintf(w, "%s  %s  %-6s %-10s %s (%s)\n",
			e.ID, e.Time.Format(time.DateTime), e.Action, e.Actor, e.Source, status)
		if err != nil {
			return err
		}
	}
	return nil
}

// getUndoCmd returns the undo command.
func getUndoCmd() *cobra.Command {
	undoCmd := &cobra.Command{
		Use:   "undo ID",
		Short: "Revert an import",
		Long: `Remove what an import created: categories, wordsets, word images,
words, audio and their media files. Entities the import only updated
stay as they are. An import can be undone once.

Examples:
  gnbundle history
  gnbundle undo 5f0c1d9e-2b6a-4c1e-9a53-8d7b2f1e0c44`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runUndo(args[0])
			if err != nil && !errors.Is(err, errPartial) {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return undoCmd
}

func runUndo(id string) error {
	ctx := context.Background()
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := openHistory(st).Undo(ctx, id, cfg.Actor)
	if err != nil {
		return err
	}
	gn.Info("%s", res.Message)
	printList("Warnings", res.Warnings)
	printList("Errors", res.Errors)
	if !res.OK {
		return errPartial
	}
	return nil
}
