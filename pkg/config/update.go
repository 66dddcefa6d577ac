package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Actor).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int
	var i64 int64

	s = c.Store.Driver
	if s != "" {
		res = append(res, OptStoreDriver(s))
	}
	s = c.Store.Path
	if s != "" {
		res = append(res, OptStorePath(s))
	}
	s = c.Store.MediaDir
	if s != "" {
		res = append(res, OptStoreMediaDir(s))
	}
	s = c.Store.Host
	if s != "" {
		res = append(res, OptStoreHost(s))
	}
	i = c.Store.Port
	if i > 0 {
		res = append(res, OptStorePort(i))
	}
	s = c.Store.User
	if s != "" {
		res = append(res, OptStoreUser(s))
	}
	s = c.Store.Password
	if s != "" {
		res = append(res, OptStorePassword(s))
	}
	s = c.Store.Database
	if s != "" {
		res = append(res, OptStoreDatabase(s))
	}
	s = c.Store.SSLMode
	if s != "" {
		res = append(res, OptStoreSSLMode(s))
	}

	i = c.Limits.MaxArchiveEntries
	if i > 0 {
		res = append(res, OptLimitsMaxArchiveEntries(i))
	}
	i64 = c.Limits.MaxUncompressedBytes
	if i64 > 0 {
		res = append(res, OptLimitsMaxUncompressedBytes(i64))
	}
	i = c.Limits.ExportMaxFiles
	if i > 0 {
		res = append(res, OptLimitsExportMaxFiles(i))
	}
	i64 = c.Limits.ExportMaxBytes
	if i64 > 0 {
		res = append(res, OptLimitsExportMaxBytes(i64))
	}
	i64 = c.Limits.ExportWarnBytes
	if i64 > 0 {
		res = append(res, OptLimitsExportWarnBytes(i64))
	}

	if len(c.Import.AllowedMetaKeys) > 0 {
		res = append(res, OptImportAllowedMetaKeys(c.Import.AllowedMetaKeys))
	}
	if len(c.Import.LegacyEncodings) > 0 {
		res = append(res, OptImportLegacyEncodings(c.Import.LegacyEncodings))
	}
	i = c.Import.MaxWarnings
	if i > 0 {
		res = append(res, OptImportMaxWarnings(i))
	}

	i = c.History.MaxEntries
	if i > 0 {
		res = append(res, OptHistoryMaxEntries(i))
	}
	i = c.History.MaxAgeDays
	if i > 0 {
		res = append(res, OptHistoryMaxAgeDays(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidInt64(name string, i int64) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Store.Driver": {"sqlite": s, "postgres": s},
		"Store.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	} else {
		gn.Warn(
			"<em>%s</em> does not support '%s' as a value. "+
				"Valid values are: \n%s\nIgnoring...",
			name, val, strings.Join(lines, "\n"),
		)
		return false
	}
}
