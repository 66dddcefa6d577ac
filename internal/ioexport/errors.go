package ioexport

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func WordsetRequiredError() error {
	msg := `Full export needs a wordset

<em>How to fix:</em>
  Add <em>--wordset SLUG</em> to the command`
	return &gn.Error{
		Code: errcode.ExportScopeError,
		Msg:  msg,
		Err:  errors.New("full export without wordset"),
	}
}

func UnknownWordsetError(slug string, err error) error {
	return &gn.Error{
		Code: errcode.ExportScopeError,
		Msg:  "Wordset <em>%s</em> does not exist",
		Vars: []any{slug},
		Err:  fmt.Errorf("wordset %q: %w", slug, err),
	}
}

func UnknownRootError(slug string) error {
	return &gn.Error{
		Code: errcode.ExportScopeError,
		Msg:  "Category <em>%s</em> does not exist",
		Vars: []any{slug},
		Err:  fmt.Errorf("root category %q not found", slug),
	}
}

func TooManyFilesError(limit int) error {
	msg := `Export has more than <em>%s</em> media files

<em>How to fix:</em>
  1. Export fewer categories with <em>--root</em>
  2. Or raise <em>limits.export_max_files</em> in config.yaml`
	return &gn.Error{
		Code: errcode.ExportLimitError,
		Msg:  msg,
		Vars: []any{humanize.Comma(int64(limit))},
		Err:  fmt.Errorf("export media files exceed %d", limit),
	}
}

func TooManyBytesError(limit int64) error {
	msg := `Export media exceed <em>%s</em>

<em>How to fix:</em>
  1. Export fewer categories with <em>--root</em>
  2. Or raise <em>limits.export_max_bytes</em> in config.yaml`
	return &gn.Error{
		Code: errcode.ExportLimitError,
		Msg:  msg,
		Vars: []any{humanize.IBytes(uint64(limit))},
		Err:  fmt.Errorf("export media bytes exceed %d", limit),
	}
}

func ExportReadError(err error) error {
	return &gn.Error{
		Code: errcode.ExportMediaError,
		Msg:  "Cannot read content for export",
		Err:  fmt.Errorf("export read: %w", err),
	}
}

func ExportWriteError(err error) error {
	return &gn.Error{
		Code: errcode.ExportMediaError,
		Msg:  "Cannot encode the bundle manifest",
		Err:  fmt.Errorf("encode manifest: %w", err),
	}
}
