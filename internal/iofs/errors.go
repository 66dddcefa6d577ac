package iofs

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func CreateDirError(dir string, err error) error {
	msg := "Cannot create directory <em>%s</em>"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: []any{dir},
		Err:  fmt.Errorf("from %s: cannot create directory: %w", fn.Name(), err),
	}
}

func CopyFileError(file string, err error) error {
	msg := `Cannot write default config to <em>%s</em>

<em>How to fix:</em>
  Check permissions of the config directory`
	return &gn.Error{
		Code: errcode.CopyFileError,
		Msg:  msg,
		Vars: []any{file},
		Err:  fmt.Errorf("cannot write %s: %w", file, err),
	}
}

func ReadFileError(path string, err error) error {
	msg := "Cannot read <em>%s</em>"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: cannot read %s: %w", fn.Name(), path, err),
	}
}
