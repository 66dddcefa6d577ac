// Package config provides configuration management for GNbundle.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Store: driver, path, host, port, user, password, database, ssl_mode
//   - Limits: archive entries, uncompressed bytes, export ceilings
//   - Import: allowed_meta_keys, legacy_encodings, max_warnings
//   - History: max_entries, max_age_days
//   - Log: level, format, destination
//
// Runtime-only fields (CLI flags only):
//   - Actor (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNBUNDLE_ prefix with underscores for nesting:
//
//	GNBUNDLE_STORE_DRIVER=postgres
//	GNBUNDLE_STORE_HOST=localhost
//	GNBUNDLE_LIMITS_MAX_ARCHIVE_ENTRIES=20000
//	GNBUNDLE_LOG_LEVEL=info
package config

// Config represents the complete GNbundle configuration.
type Config struct {
	// Store contains content store connection settings.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Limits contains size and count budgets for archives and exports.
	Limits LimitsConfig `mapstructure:"limits" yaml:"limits"`

	// Import contains settings for the import pipeline.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	// History contains settings of the import/undo history.
	History HistoryConfig `mapstructure:"history" yaml:"history"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Actor is the name recorded in history entries.
	// Runtime-only, set from CLI flags.
	Actor string

	// HomeDir determines where config, cache, data and logs directories
	// reside. It must be set by CLI during init, there is no default value
	// for it.
	HomeDir string
}

// StoreConfig contains content store settings.
type StoreConfig struct {
	// Driver is either "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file. Empty means the default file
	// in the data directory.
	Path string `mapstructure:"path" yaml:"path"`

	// MediaDir is the managed media storage root. Empty means
	// the default media directory inside the data directory.
	MediaDir string `mapstructure:"media_dir" yaml:"media_dir"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// LimitsConfig enumerates size and count budgets.
type LimitsConfig struct {
	// MaxArchiveEntries is the ceiling for the number of entries in an
	// imported archive.
	MaxArchiveEntries int `mapstructure:"max_archive_entries" yaml:"max_archive_entries"`

	// MaxUncompressedBytes is the ceiling for the cumulative declared
	// uncompressed size of an imported archive.
	MaxUncompressedBytes int64 `mapstructure:"max_uncompressed_bytes" yaml:"max_uncompressed_bytes"`

	// ExportMaxFiles is a hard ceiling of media files in an export.
	ExportMaxFiles int `mapstructure:"export_max_files" yaml:"export_max_files"`

	// ExportMaxBytes is a hard ceiling of media bytes in an export.
	ExportMaxBytes int64 `mapstructure:"export_max_bytes" yaml:"export_max_bytes"`

	// ExportWarnBytes is a soft threshold, exceeding it only produces
	// a warning.
	ExportWarnBytes int64 `mapstructure:"export_warn_bytes" yaml:"export_warn_bytes"`
}

// ImportConfig contains settings of the import pipeline.
type ImportConfig struct {
	// AllowedMetaKeys are glob patterns of reserved (underscore-prefixed)
	// metadata keys that are accepted during import.
	AllowedMetaKeys []string `mapstructure:"allowed_meta_keys" yaml:"allowed_meta_keys"`

	// LegacyEncodings are tried in order when a tabular file is not valid
	// UTF-8 and the detected charset does not decode it cleanly.
	// Latin-1 is always tried last.
	LegacyEncodings []string `mapstructure:"legacy_encodings" yaml:"legacy_encodings"`

	// MaxWarnings caps the number of warnings kept in an import result.
	MaxWarnings int `mapstructure:"max_warnings" yaml:"max_warnings"`
}

// HistoryConfig contains settings of the history log.
type HistoryConfig struct {
	// MaxEntries is the maximum length of the history list.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`

	// MaxAgeDays removes entries older than this number of days.
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Store: StoreConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "gnbundle",
			SSLMode:  "disable",
		},
		Limits: LimitsConfig{
			MaxArchiveEntries:    10_000,
			MaxUncompressedBytes: 2 << 30,
			ExportMaxFiles:       20_000,
			ExportMaxBytes:       2 << 30,
			ExportWarnBytes:      512 << 20,
		},
		Import: ImportConfig{
			AllowedMetaKeys: []string{"_lb_*"},
			LegacyEncodings: []string{"windows-1252", "windows-1251"},
			MaxWarnings:     100,
		},
		History: HistoryConfig{
			MaxEntries: 20,
			MaxAgeDays: 90,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		Actor: "cli",
	}

	return res
}

// SQLitePath returns the SQLite database file of the store.
func (c *Config) SQLitePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return DBFilePath(c.HomeDir)
}

// MediaRoot returns the managed media storage root.
func (c *Config) MediaRoot() string {
	if c.Store.MediaDir != "" {
		return c.Store.MediaDir
	}
	return MediaDir(c.HomeDir)
}
