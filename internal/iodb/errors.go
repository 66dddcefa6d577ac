package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/errcode"
)

// ConnectionError is returned when PostgreSQL connection fails.
func ConnectionError(cfg *config.StoreConfig, err error) error {
	msg := `Cannot connect to PostgreSQL at <em>%s:%d/%s</em>

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Store configuration is incorrect
  - Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>
  2. Review store settings in <em>~/.config/gnbundle/config.yaml</em>
  3. Or switch to the embedded store with <em>GNBUNDLE_STORE_DRIVER=sqlite</em>`
	vars := []any{
		cfg.Host, cfg.Port, cfg.Database,
		cfg.Host, cfg.Port,
	}
	return &gn.Error{
		Code: errcode.StoreConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s:%d/%s as %s: %w",
			cfg.Host, cfg.Port, cfg.Database, cfg.User, err),
	}
}

// SQLiteOpenError is returned when the SQLite file cannot be opened.
func SQLiteOpenError(path string, err error) error {
	msg := "Cannot open store file <em>%s</em>"
	return &gn.Error{
		Code: errcode.StoreConnectionError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot open sqlite %s: %w", path, err),
	}
}

// GORMError is returned when GORM cannot use an opened connection.
func GORMError(err error) error {
	msg := "Cannot initialize store connection"
	return &gn.Error{
		Code: errcode.StoreConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("gorm: %w", err),
	}
}

// NotConnectedError is returned when the store is used before Connect.
func NotConnectedError() error {
	msg := "Store operation attempted without a connection"
	return &gn.Error{
		Code: errcode.StoreNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to store"),
	}
}
