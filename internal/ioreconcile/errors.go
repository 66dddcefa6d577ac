package ioreconcile

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func AssignWordsetError(slug string, err error) error {
	msg := `Wordset <em>%s</em> does not exist

<em>How to fix:</em>
  1. Use an existing wordset slug with <em>--wordset</em>
  2. Or import with <em>--wordset-mode create</em>`
	return &gn.Error{
		Code: errcode.ImportWordsetError,
		Msg:  msg,
		Vars: []any{slug},
		Err:  fmt.Errorf("wordset %q: %w", slug, err),
	}
}
