// Package xdg provides centralized path management following XDG Base Directory conventions.
// All per-user paths cursor-updater touches on disk are defined here. System paths
// (install dir, launcher symlink) are configuration, see pkg/config.
package xdg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const appName = "cursor-updater"

// LogFileEnv overrides the log file location.
const LogFileEnv = "CURSOR_UPDATER_LOG_FILE"

func userHome() (string, error) {
	return os.UserHomeDir()
}

func baseDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}

	home, err := userHome()
	if err != nil {
		home = "~"
	}

	return filepath.Join(append([]string{home}, fallback...)...)
}

// --- XDG base directory functions ---

// ConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func ConfigHome() string {
	return baseDir("XDG_CONFIG_HOME", ".config")
}

// DataHome returns $XDG_DATA_HOME or ~/.local/share.
func DataHome() string {
	return baseDir("XDG_DATA_HOME", ".local", "share")
}

// StateHome returns $XDG_STATE_HOME or ~/.local/state.
func StateHome() string {
	return baseDir("XDG_STATE_HOME", ".local", "state")
}

// CacheHome returns $XDG_CACHE_HOME or ~/.cache.
func CacheHome() string {
	return baseDir("XDG_CACHE_HOME", ".cache")
}

// LegacyLogFile returns ~/.cursor_updater.log, where the shell-era updater logged.
func LegacyLogFile() string {
	home, err := userHome()
	if err != nil {
		return filepath.Join("~", ".cursor_updater.log")
	}

	return filepath.Join(home, ".cursor_updater.log")
}

// --- cursor-updater directories ---

// ConfigDir returns ConfigHome()/cursor-updater.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), appName)
}

// StateDir returns StateHome()/cursor-updater.
func StateDir() string {
	return filepath.Join(StateHome(), appName)
}

// CacheDir returns CacheHome()/cursor-updater.
func CacheDir() string {
	return filepath.Join(CacheHome(), appName)
}

// --- Specific file paths ---

// GlobalConfigFile returns ConfigDir()/config.toml.
func GlobalConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LogFile returns the log file path.
// Respects CURSOR_UPDATER_LOG_FILE, otherwise StateDir()/updater.log.
func LogFile() string {
	if v := os.Getenv(LogFileEnv); v != "" {
		return v
	}

	return filepath.Join(StateDir(), "updater.log")
}

// HistoryFile returns StateDir()/history.jsonl.
func HistoryFile() string {
	return filepath.Join(StateDir(), "history.jsonl")
}

// CrashDir returns StateDir()/crashes.
func CrashDir() string {
	return filepath.Join(StateDir(), "crashes")
}

// DownloadDir returns CacheDir()/downloads.
func DownloadDir() string {
	return filepath.Join(CacheDir(), "downloads")
}

// StagingDir returns CacheDir()/staging.
func StagingDir() string {
	return filepath.Join(CacheDir(), "staging")
}

// ApplicationsDir returns DataHome()/applications, the per-user desktop entry directory.
func ApplicationsDir() string {
	return filepath.Join(DataHome(), "applications")
}

// MigrationMarker returns StateDir()/.migrated.
func MigrationMarker() string {
	return filepath.Join(StateDir(), ".migrated")
}

// --- Utility functions ---

// ExpandPath resolves ~ prefix to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
// Returns error for invalid tilde usage like "~foo".
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := userHome()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	switch {
	case path == "~":
		return home, nil
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:]), nil
	default:
		return "", errors.Newf("paths starting with ~ must be either ~ or ~/subdir, got %q", path)
	}
}

// ExpandPathSilent resolves ~ prefix, returning the original path on error.
func ExpandPathSilent(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}

	return expanded
}

// EnsureDir creates a directory with 0700 permissions if it doesn't exist,
// and fixes permissions on existing directories if they're too open.
func EnsureDir(path string) error {
	const dirMode = 0o700

	if err := os.MkdirAll(path, dirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}

	// MkdirAll only sets perms on new dirs. Fix existing ones if too open.
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat directory %s", path)
	}

	if info.Mode().Perm() != dirMode {
		if err := os.Chmod(path, dirMode); err != nil {
			return errors.Wrapf(err, "failed to set permissions on %s", path)
		}
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
