package crashdump

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/internal/xdg"
)

const (
	// FilePerm is the file permission for crash reports.
	FilePerm fs.FileMode = 0o600

	// DirPerm is the permission for the crash report directory.
	DirPerm fs.FileMode = 0o700

	// DefaultMaxReports is how many crash reports Prune keeps by default.
	DefaultMaxReports = 10

	fileExtension = ".json"
	tempSuffix    = ".tmp"
	idPrefix      = "crash-"
)

var (
	// ErrWriteFailed is returned when writing a crash report fails.
	ErrWriteFailed = errors.New("failed to write crash dump")

	// ErrInvalidDumpDir is returned when the dump directory is invalid.
	ErrInvalidDumpDir = errors.New("invalid dump directory")
)

// FilesystemWriter writes crash reports as JSON files.
type FilesystemWriter struct {
	dumpDir string
}

// NewFilesystemWriter creates a writer for dumpDir; a leading ~ is expanded.
func NewFilesystemWriter(dumpDir string) (*FilesystemWriter, error) {
	if dumpDir == "" {
		return nil, errors.Wrap(ErrInvalidDumpDir, "dump directory cannot be empty")
	}

	expandedDir, err := xdg.ExpandPath(dumpDir)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidDumpDir, err.Error())
	}

	return &FilesystemWriter{dumpDir: expandedDir}, nil
}

// Write stores info and returns the file path.
func (w *FilesystemWriter) Write(info *CrashInfo) (string, error) {
	if info == nil {
		return "", errors.Wrap(ErrWriteFailed, "crash info is nil")
	}

	if err := os.MkdirAll(w.dumpDir, DirPerm); err != nil {
		return "", errors.Wrap(ErrInvalidDumpDir, err.Error())
	}

	filePath := filepath.Join(w.dumpDir, info.ID+fileExtension)
	tempPath := filePath + tempSuffix

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", errors.Wrap(ErrWriteFailed, "failed to marshal crash info")
	}

	if err := os.WriteFile(tempPath, data, FilePerm); err != nil {
		return "", errors.Wrap(ErrWriteFailed, err.Error())
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)

		return "", errors.Wrap(ErrWriteFailed, err.Error())
	}

	return filePath, nil
}

// Dir returns the dump directory path.
func (w *FilesystemWriter) Dir() string {
	return w.dumpDir
}

// Prune deletes all but the keep newest crash reports and returns how many
// were removed. Report IDs start with a timestamp, so name order is age order.
func (w *FilesystemWriter) Prune(keep int) (int, error) {
	entries, err := os.ReadDir(w.dumpDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}

		return 0, errors.Wrapf(err, "reading %s", w.dumpDir)
	}

	var names []string

	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), idPrefix) && strings.HasSuffix(e.Name(), fileExtension) {
			names = append(names, e.Name())
		}
	}

	if len(names) <= keep {
		return 0, nil
	}

	slices.Sort(names)

	var (
		removed int
		errs    []error
	)

	for _, name := range names[:len(names)-max(keep, 0)] {
		if err := os.Remove(filepath.Join(w.dumpDir, name)); err != nil {
			errs = append(errs, err)

			continue
		}

		removed++
	}

	return removed, errors.Join(errs...)
}
