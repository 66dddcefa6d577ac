package iooptimize

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

// NotConnectedError is returned when the store is not connected.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.StoreNotConnectedError,
		Msg:  "Optimization attempted without store connection",
		Err:  fmt.Errorf("not connected to store"),
	}
}

// OrphanRemovalError is returned when deleting orphan rows fails.
func OrphanRemovalError(kind string, err error) error {
	return &gn.Error{
		Code: errcode.OptimizeOrphanError,
		Msg:  "Failed to remove orphan <em>%s</em>",
		Vars: []any{kind},
		Err:  fmt.Errorf("remove orphan %s: %w", kind, err),
	}
}

// MediaSweepError is returned when the media root cannot be compared
// with media records.
func MediaSweepError(err error) error {
	msg := `Cannot check media files

<em>How to fix:</em>
  1. Check permissions of the media directory
  2. Check <em>store.media_dir</em> in config.yaml`

	return &gn.Error{
		Code: errcode.OptimizeMediaSweepError,
		Msg:  msg,
		Err:  fmt.Errorf("sweep media: %w", err),
	}
}

// VacuumError is returned when VACUUM or ANALYZE fails.
func VacuumError(err error) error {
	msg := `Cannot update store statistics

<em>Possible causes:</em>
  - Another process holds a lock on the store
  - Not enough disk space for VACUUM`

	return &gn.Error{
		Code: errcode.OptimizeVacuumError,
		Msg:  msg,
		Err:  fmt.Errorf("vacuum analyze: %w", err),
	}
}
