package xdg

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/pkg/logger"
)

// MigrationResult tracks what the migration did.
type MigrationResult struct {
	Moved    int
	Symlinks int
	Skipped  int
	Warnings []string
}

// NeedsMigration returns true if the legacy log file exists and the marker is absent.
func NeedsMigration() bool {
	if fileExists(MigrationMarker()) {
		return false
	}

	return fileExists(LegacyLogFile())
}

// Migrate moves ~/.cursor_updater.log into the state directory and leaves a
// symlink at the old location. Idempotent: an existing destination is kept.
// Uses an exclusive lock file so parallel invocations do not race.
func Migrate(log logger.Logger) (*MigrationResult, error) {
	result := &MigrationResult{}

	if fileExists(MigrationMarker()) {
		return result, nil
	}

	lockPath := MigrationMarker() + ".lock"

	if err := EnsureDir(filepath.Dir(lockPath)); err != nil {
		return result, errors.Wrap(err, "creating lock directory")
	}

	const lockPerm = 0o600

	lockFlags := os.O_CREATE | os.O_EXCL | os.O_WRONLY

	//nolint:gosec // lockPath is from MigrationMarker()
	lockFile, err := os.OpenFile(lockPath, lockFlags, lockPerm)
	if err != nil {
		log.Debug("migration lock already held, skipping", "lock", lockPath)

		return result, nil
	}

	_ = lockFile.Close()

	defer func() { _ = os.Remove(lockPath) }()

	if fileExists(MigrationMarker()) {
		return result, nil
	}

	legacy := LegacyLogFile()
	dest := filepath.Join(StateDir(), "updater.log")

	moved, err := migrateFile(legacy, dest, log)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case moved:
		result.Moved++

		if err := createSymlink(dest, legacy, log); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		} else {
			result.Symlinks++
		}
	default:
		result.Skipped++
	}

	if err := writeMigrationMarker(); err != nil {
		return result, errors.Wrap(err, "writing migration marker")
	}

	return result, nil
}

// migrateFile moves a single file from src to dest if src exists and dest doesn't.
func migrateFile(src, dest string, log logger.Logger) (moved bool, err error) {
	info, err := os.Lstat(src)
	if err != nil || !info.Mode().IsRegular() {
		return false, nil
	}

	if fileExists(dest) {
		log.Debug("skipping migration, destination exists", "src", src, "dest", dest)

		return false, nil
	}

	if err := EnsureDir(filepath.Dir(dest)); err != nil {
		return false, errors.Wrapf(err, "creating directory for %s", dest)
	}

	if err := os.Rename(src, dest); err != nil {
		// Cross-device: copy + remove
		if copyErr := copyAndRemove(src, dest); copyErr != nil {
			return false, copyErr
		}

		log.Info("migrated file (cross-device)", "from", src, "to", dest)

		return true, nil
	}

	log.Info("migrated file", "from", src, "to", dest)

	return true, nil
}

// createSymlink points legacyPath at target unless something already lives there.
func createSymlink(target, legacyPath string, log logger.Logger) error {
	if _, err := os.Lstat(legacyPath); err == nil {
		return nil
	}

	if err := os.Symlink(target, legacyPath); err != nil {
		return errors.Wrapf(err, "creating symlink %s -> %s", legacyPath, target)
	}

	log.Info("created symlink", "link", legacyPath, "target", target)

	return nil
}

func writeMigrationMarker() error {
	marker := MigrationMarker()

	if err := EnsureDir(filepath.Dir(marker)); err != nil {
		return err
	}

	const markerPerm = 0o600

	return os.WriteFile(marker, []byte("1"), markerPerm)
}

func copyAndRemove(src, dest string) error {
	in, err := os.Open(src) //nolint:gosec // G304: src is the fixed legacy log path
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, logger.LogFilePermissions)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)

		return errors.Wrapf(err, "copying %s to %s", src, dest)
	}

	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", dest)
	}

	if err := os.Remove(src); err != nil {
		return errors.Wrapf(err, "removing source %s after copy to %s", src, dest)
	}

	return nil
}
