package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/internal/exec"
)

// ExtractedDirName is where an AppImage unpacks itself.
const ExtractedDirName = "squashfs-root"

// AppImageExtractor runs `<artifact> --appimage-extract` inside the target directory.
type AppImageExtractor struct {
	runner exec.CommandRunner
}

// NewAppImageExtractor creates an AppImageExtractor.
func NewAppImageExtractor(runner exec.CommandRunner) *AppImageExtractor {
	return &AppImageExtractor{runner: runner}
}

// Extract implements Extractor.
func (e *AppImageExtractor) Extract(ctx context.Context, artifact, dir string) (string, error) {
	artifact, err := filepath.Abs(artifact)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", artifact)
	}

	res := e.runner.RunInDir(ctx, dir, artifact, "--appimage-extract")
	if res.Failed() {
		return "", &ExtractionError{Artifact: artifact, Output: strings.TrimSpace(res.Stderr), Err: commandError(res)}
	}

	root := filepath.Join(dir, ExtractedDirName)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", &ExtractionError{Artifact: artifact, Err: errors.Newf("%s not found after extraction", ExtractedDirName)}
	}

	return root, nil
}

// DesktopDatabase refreshes launcher metadata with update-desktop-database.
type DesktopDatabase struct {
	runner exec.CommandRunner
}

// NewDesktopDatabase creates a DesktopDatabase refresher.
func NewDesktopDatabase(runner exec.CommandRunner) *DesktopDatabase {
	return &DesktopDatabase{runner: runner}
}

// Refresh implements DesktopRefresher.
func (d *DesktopDatabase) Refresh(ctx context.Context, dir string) error {
	if res := d.runner.Run(ctx, "update-desktop-database", dir); res.Failed() {
		return errors.Wrapf(commandError(res), "update-desktop-database %s", dir)
	}

	return nil
}
