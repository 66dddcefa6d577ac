package ioload

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func ReadManifestError(err error) error {
	msg := "Cannot read <em>%s</em> from the archive"
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: []any{bundle.ManifestFile},
		Err:  fmt.Errorf("read manifest: %w", err),
	}
}

func UnsafeMediaPathError(path string) error {
	msg := "Manifest refers to media outside of the bundle: <em>%q</em>"
	return &gn.Error{
		Code: errcode.PayloadMalformedError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("unsafe media path %q", path),
	}
}

func CatalogError(err error) error {
	msg := "Cannot index bundle files"
	return &gn.Error{
		Code: errcode.PayloadMalformedError,
		Msg:  msg,
		Err:  fmt.Errorf("catalog: %w", err),
	}
}

// NoPayloadError lists the first problems found in tabular files to
// help fixing the bundle.
func NoPayloadError(files int, warnings []string) error {
	msg := `No usable content in the archive

The archive has no <em>%s</em> and %d tabular file(s) gave no rows.`
	vars := []any{bundle.ManifestFile, files}
	if len(warnings) > 0 {
		n := min(len(warnings), 5)
		msg += "\n\n<em>First problems:</em>\n  - %s"
		vars = append(vars, strings.Join(warnings[:n], "\n  - "))
	}
	return &gn.Error{
		Code: errcode.PayloadNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no usable payload in %d tabular files", files),
	}
}
