package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/errcode"
)

// NotConnectedError creates an error for when schema
// operation is attempted without store connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without store connection"

	return &gn.Error{
		Code: errcode.StoreNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to store"),
	}
}

// MigrateSchemaError creates an error for schema
// migration failures.
func MigrateSchemaError(err error) error {
	msg := `Cannot migrate store schema

<em>Possible causes:</em>
  - Insufficient database permissions
  - The store file belongs to another program

<em>How to fix:</em>
  1. Check database user has CREATE and ALTER permissions
  2. Point <em>store.path</em> to a new file`

	return &gn.Error{
		Code: errcode.StoreMigrateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to migrate schema: %w", err),
	}
}
