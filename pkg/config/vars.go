package config

import (
	"path/filepath"
)

var (
	// MinManifestVersion determines the oldest manifest format that
	// is still compatible with GNbundle.
	MinManifestVersion = "v1.0.0"
	// ManifestVersion is written into exported manifests.
	ManifestVersion = "v1.0.0"
	// AppName is used in generating file system paths.
	AppName = "gnbundle"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnbundle by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Extraction directories are created here.
// Returns ~/.cache/gnbundle by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// DataDir returns the directory for the local store and media.
// Returns ~/.local/share/gnbundle by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnbundle/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(DataDir(homeDir), "logs")
}

// MediaDir returns the default managed media root.
func MediaDir(homeDir string) string {
	return filepath.Join(DataDir(homeDir), "media")
}

// DBFilePath returns the default SQLite store file.
func DBFilePath(homeDir string) string {
	return filepath.Join(DataDir(homeDir), AppName+".db")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnbundle/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
