package ioarchive

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func OpenError(name string, err error) error {
	msg := "Cannot open archive <em>%s</em>"
	return &gn.Error{
		Code: errcode.ArchiveOpenError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("cannot open zip %s: %w", name, err),
	}
}

func TooManyEntriesError(n, limit int) error {
	msg := "Archive has <em>%s</em> entries, the limit is <em>%s</em>"
	vars := []any{humanize.Comma(int64(n)), humanize.Comma(int64(limit))}
	return &gn.Error{
		Code: errcode.ArchiveBudgetError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("archive entries %d > %d", n, limit),
	}
}

func TooLargeError(limit int64) error {
	msg := "Uncompressed archive size exceeds <em>%s</em>"
	return &gn.Error{
		Code: errcode.ArchiveBudgetError,
		Msg:  msg,
		Vars: []any{humanize.IBytes(uint64(limit))},
		Err:  fmt.Errorf("uncompressed size > %d", limit),
	}
}

func NegativeSizeError(name string) error {
	msg := "Archive entry <em>%s</em> declares an invalid size"
	return &gn.Error{
		Code: errcode.ArchiveBudgetError,
		Msg:  msg,
		Vars: []any{strconv.Quote(name)},
		Err:  fmt.Errorf("entry %q has negative size", name),
	}
}

func UnsafeEntryError(name, reason string) error {
	msg := "Unsafe archive entry <em>%s</em>: %s"
	name = strconv.Quote(name)
	return &gn.Error{
		Code: errcode.ArchiveUnsafeEntryError,
		Msg:  msg,
		Vars: []any{name, reason},
		Err:  fmt.Errorf("unsafe entry %s: %s", name, reason),
	}
}

func SizeMismatchError(name string, size int64) error {
	msg := "Archive entry <em>%s</em> is larger than declared"
	return &gn.Error{
		Code: errcode.ArchiveExtractError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("entry %s exceeds declared size %d", name, size),
	}
}

func ExtractError(name string, err error) error {
	msg := "Cannot extract <em>%s</em>"
	return &gn.Error{
		Code: errcode.ArchiveExtractError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("extract %s: %w", name, err),
	}
}

func WriteError(dest string, err error) error {
	msg := "Cannot write archive <em>%s</em>"
	return &gn.Error{
		Code: errcode.ArchiveWriteError,
		Msg:  msg,
		Vars: []any{dest},
		Err:  fmt.Errorf("write zip %s: %w", dest, err),
	}
}
