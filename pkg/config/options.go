package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptStoreDriver sets the content store driver.
// Valid values: "sqlite", "postgres".
func OptStoreDriver(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Store.Driver", s) {
			c.Store.Driver = s
		}
	}
}

// OptStorePath sets the SQLite database file.
func OptStorePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Path", s) {
			c.Store.Path = s
		}
	}
}

// OptStoreMediaDir sets the managed media root.
func OptStoreMediaDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Media Directory", s) {
			c.Store.MediaDir = s
		}
	}
}

// OptStoreHost sets the PostgreSQL server hostname or IP address.
func OptStoreHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Host", s) {
			c.Store.Host = s
		}
	}
}

// OptStorePort sets the PostgreSQL server port number.
func OptStorePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Store Port", i) {
			c.Store.Port = i
		}
	}
}

// OptStoreUser sets the PostgreSQL database username.
func OptStoreUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store User", s) {
			c.Store.User = s
		}
	}
}

// OptStorePassword sets the PostgreSQL database password.
func OptStorePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Password", s) {
			c.Store.Password = s
		}
	}
}

// OptStoreDatabase sets the PostgreSQL database name to connect to.
func OptStoreDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Database", s) {
			c.Store.Database = s
		}
	}
}

// OptStoreSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptStoreSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Store.SSLMode", s) {
			c.Store.SSLMode = s
		}
	}
}

// OptLimitsMaxArchiveEntries sets the ceiling of archive entries.
func OptLimitsMaxArchiveEntries(i int) Option {
	return func(c *Config) {
		if isValidInt("Max Archive Entries", i) {
			c.Limits.MaxArchiveEntries = i
		}
	}
}

// OptLimitsMaxUncompressedBytes sets the ceiling of the cumulative
// uncompressed archive size.
func OptLimitsMaxUncompressedBytes(i int64) Option {
	return func(c *Config) {
		if isValidInt64("Max Uncompressed Bytes", i) {
			c.Limits.MaxUncompressedBytes = i
		}
	}
}

// OptLimitsExportMaxFiles sets the hard ceiling of exported media files.
func OptLimitsExportMaxFiles(i int) Option {
	return func(c *Config) {
		if isValidInt("Export Max Files", i) {
			c.Limits.ExportMaxFiles = i
		}
	}
}

// OptLimitsExportMaxBytes sets the hard ceiling of exported media bytes.
func OptLimitsExportMaxBytes(i int64) Option {
	return func(c *Config) {
		if isValidInt64("Export Max Bytes", i) {
			c.Limits.ExportMaxBytes = i
		}
	}
}

// OptLimitsExportWarnBytes sets the soft export size threshold.
func OptLimitsExportWarnBytes(i int64) Option {
	return func(c *Config) {
		if isValidInt64("Export Warn Bytes", i) {
			c.Limits.ExportWarnBytes = i
		}
	}
}

// OptImportAllowedMetaKeys sets glob patterns of reserved metadata keys
// accepted during import.
func OptImportAllowedMetaKeys(ss []string) Option {
	ss = cleanStrings(ss)
	return func(c *Config) {
		if len(ss) > 0 {
			c.Import.AllowedMetaKeys = ss
		}
	}
}

// OptImportLegacyEncodings sets encodings tried for non UTF-8 tabular files.
func OptImportLegacyEncodings(ss []string) Option {
	ss = cleanStrings(ss)
	return func(c *Config) {
		if len(ss) > 0 {
			c.Import.LegacyEncodings = ss
		}
	}
}

// OptImportMaxWarnings caps the number of kept warnings.
func OptImportMaxWarnings(i int) Option {
	return func(c *Config) {
		if isValidInt("Import Max Warnings", i) {
			c.Import.MaxWarnings = i
		}
	}
}

// OptHistoryMaxEntries sets the maximum length of the history list.
func OptHistoryMaxEntries(i int) Option {
	return func(c *Config) {
		if isValidInt("History Max Entries", i) {
			c.History.MaxEntries = i
		}
	}
}

// OptHistoryMaxAgeDays sets how long history entries are kept.
func OptHistoryMaxAgeDays(i int) Option {
	return func(c *Config) {
		if isValidInt("History Max Age Days", i) {
			c.History.MaxAgeDays = i
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptActor sets the name recorded in history entries.
// Runtime-only field - not in ToOptions().
func OptActor(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Actor", s) {
			c.Actor = s
		}
	}
}

// OptHomeDir sets the home directory for config, cache, data and log
// locations. Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}

func cleanStrings(ss []string) []string {
	var res []string
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}
