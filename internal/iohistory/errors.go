package iohistory

import (
	"fmt"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func ReadError(err error) error {
	msg := `Cannot read import history

<em>Possible causes:</em>
  - The store is not reachable
  - The history record is damaged`
	return &gn.Error{
		Code: errcode.HistoryReadError,
		Msg:  msg,
		Err:  fmt.Errorf("read history: %w", err),
	}
}

func WriteError(err error) error {
	return &gn.Error{
		Code: errcode.HistoryWriteError,
		Msg:  "Cannot save import history",
		Err:  fmt.Errorf("write history: %w", err),
	}
}

func EntryNotFoundError(id string) error {
	msg := `No import <em>%s</em> in history

<em>How to fix:</em>
  Run <em>gnbundle history</em> to see ids of recent imports`
	return &gn.Error{
		Code: errcode.HistoryEntryNotFoundError,
		Msg:  msg,
		Vars: []any{id},
		Err:  fmt.Errorf("history entry %s not found", id),
	}
}

func AlreadyUndoneError(id string, at time.Time) error {
	msg := "Import <em>%s</em> was already undone at %s"
	ts := at.Format(time.RFC3339)
	return &gn.Error{
		Code: errcode.HistoryAlreadyUndoneError,
		Msg:  msg,
		Vars: []any{id, ts},
		Err:  fmt.Errorf("history entry %s undone at %s", id, ts),
	}
}
