package ioimport

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func WorkDirError(dir string, err error) error {
	msg := `Cannot create a work directory in <em>%s</em>

<em>Possible causes:</em>
  - No write permission
  - Disk is full`
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: []any{dir},
		Err:  fmt.Errorf("work dir in %s: %w", dir, err),
	}
}
