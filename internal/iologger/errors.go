package iologger

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func CreateLogFileError(path string, err error) error {
	return &gn.Error{
		Code: errcode.CreateLogFileError,
		Msg:  "Cannot create log file <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("cannot create log file: %w", err),
	}
}
