package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/errcode"
)

func ManifestDecodeError(err error) error {
	msg := `Cannot decode <em>%s</em>

<em>Possible causes:</em>
  - The bundle was not created by GNbundle
  - The manifest file is truncated or edited by hand`
	return &gn.Error{
		Code: errcode.PayloadMalformedError,
		Msg:  msg,
		Vars: []any{ManifestFile},
		Err:  fmt.Errorf("cannot decode manifest: %w", err),
	}
}

func ManifestKeysError(keys []string) error {
	msg := "Manifest misses required keys: <em>%s</em>"
	list := strings.Join(keys, ", ")
	return &gn.Error{
		Code: errcode.PayloadMalformedError,
		Msg:  msg,
		Vars: []any{list},
		Err:  fmt.Errorf("manifest misses keys: %s", list),
	}
}

func ManifestVersionFormatError(version string) error {
	msg := "Manifest version <em>%s</em> is not a semantic version"
	return &gn.Error{
		Code: errcode.PayloadVersionError,
		Msg:  msg,
		Vars: []any{version},
		Err:  fmt.Errorf("bad manifest version %q", version),
	}
}

func ManifestVersionTooOldError(version string) error {
	msg := "Manifest version <em>%s</em> is older than supported <em>%s</em>"
	return &gn.Error{
		Code: errcode.PayloadVersionError,
		Msg:  msg,
		Vars: []any{version, config.MinManifestVersion},
		Err: fmt.Errorf("manifest version %s < %s",
			version, config.MinManifestVersion),
	}
}

// ErrKeyNotFound is returned by KV implementations for missing keys.
var ErrKeyNotFound = errors.New("key not found")
