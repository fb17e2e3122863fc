// Package installer swaps an extracted AppImage tree into its install location.
//
// Install runs a fixed pipeline of named steps and returns a Result whose State
// tells the caller whether the live installation is untouched (Aborted), fully
// replaced (Installed) or needs manual attention (PartiallyInstalled).
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/pkg/config"
	"github.com/smykla-skalski/cursor-updater/pkg/logger"
)

const (
	stagingDirMode = 0o700
	stagingPrefix  = "extract-"
	rootID         = 0
	sandboxMode    = os.ModeSetuid | 0o755
)

// Paths locates the installation and its supporting files.
type Paths struct {
	InstallPath string
	Symlink     string
	// Launcher is the entry point relative to InstallPath.
	Launcher string
	// SandboxHelper is the setuid helper relative to the extracted root.
	SandboxHelper   string
	ApplicationsDir string
	StagingRoot     string
}

// PathsFromConfig builds Paths from the install section of the configuration.
func PathsFromConfig(cfg *config.InstallConfig) Paths {
	return Paths{
		InstallPath:     cfg.GetPath(),
		Symlink:         cfg.GetSymlink(),
		Launcher:        cfg.GetLauncher(),
		SandboxHelper:   cfg.GetSandboxHelper(),
		ApplicationsDir: cfg.ApplicationsDir,
		StagingRoot:     cfg.StagingDir,
	}
}

// LauncherTarget is the file the launcher link points at.
func (p Paths) LauncherTarget() string {
	return filepath.Join(p.InstallPath, p.Launcher)
}

// Installer installs extracted bundles.
type Installer struct {
	paths     Paths
	fs        Privileged
	extractor Extractor
	refresher DesktopRefresher
	log       logger.Logger
	now       func() time.Time
}

// Option configures an Installer.
type Option func(*Installer)

// WithClock replaces the time source used for backup names.
func WithClock(now func() time.Time) Option {
	return func(in *Installer) { in.now = now }
}

// New creates an Installer.
func New(
	paths Paths,
	fs Privileged,
	extractor Extractor,
	refresher DesktopRefresher,
	log logger.Logger,
	opts ...Option,
) *Installer {
	in := &Installer{
		paths:     paths,
		fs:        fs,
		extractor: extractor,
		refresher: refresher,
		log:       log,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Paths returns the paths the installer operates on.
func (in *Installer) Paths() Paths {
	return in.paths
}

type installOptions struct {
	noBackup bool
}

// InstallOption adjusts a single Install call.
type InstallOption func(*installOptions)

// WithoutBackup deletes the live tree instead of keeping it as a backup.
func WithoutBackup() InstallOption {
	return func(o *installOptions) { o.noBackup = true }
}

// Install extracts artifact and makes it the live installation.
func (in *Installer) Install(ctx context.Context, artifact string, opts ...InstallOption) *Result {
	o := installOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	res := &Result{}
	live := in.paths.InstallPath

	in.trace(StepExtract, "artifact", artifact)

	staging, staged, err := in.extractToStaging(ctx, artifact)
	if err != nil {
		return in.failed(res, StateAborted, StepExtract, err)
	}

	defer in.cleanupStaging(res, staging)

	if err := ctx.Err(); err != nil {
		return in.failed(res, StateAborted, StepRemediate, err)
	}

	in.trace(StepRemediate, "staged", staged)

	if err := in.remediateSandbox(ctx, res, staged); err != nil {
		return in.failed(res, StateAborted, StepRemediate, err)
	}

	if err := ctx.Err(); err != nil {
		return in.failed(res, StateAborted, StepBackup, err)
	}

	in.trace(StepBackup, "live", live, "no_backup", o.noBackup)

	hadLive := exists(live)

	if hadLive {
		if o.noBackup {
			if err := in.fs.RemoveAll(ctx, live); err != nil {
				res.Remediation = fmt.Sprintf(
					"the old installation at %s could not be fully removed; remove it with `sudo rm -rf %s` and run the updater again",
					live, live,
				)

				return in.failed(res, StatePartiallyInstalled, StepBackup, err)
			}
		} else {
			backup := NextBackupPath(live, in.now())
			if err := in.fs.Move(ctx, live, backup); err != nil {
				return in.failed(res, StateAborted, StepBackup, err)
			}

			res.BackupPath = backup
			in.log.Info("previous installation backed up", "backup", backup)
		}
	}

	in.trace(StepSwap, "from", staged, "to", live)

	if err := in.fs.Move(ctx, staged, live); err != nil {
		return in.swapFailed(ctx, res, hadLive, err)
	}

	in.trace(StepRelink, "link", in.paths.Symlink, "target", in.paths.LauncherTarget())

	if err := in.fs.Symlink(ctx, in.paths.LauncherTarget(), in.paths.Symlink); err != nil {
		res.Remediation = fmt.Sprintf(
			"the new version is installed at %s but %s was not updated; fix it with `sudo ln -sfn %s %s`",
			live, in.paths.Symlink, in.paths.LauncherTarget(), in.paths.Symlink,
		)

		return in.failed(res, StatePartiallyInstalled, StepRelink, err)
	}

	in.refreshDesktop(ctx, res)

	res.State = StateInstalled
	res.Step = StepCleanup

	return res
}

// extractToStaging unpacks artifact into a fresh directory under the staging
// root. Leftovers from earlier runs are removed first.
func (in *Installer) extractToStaging(ctx context.Context, artifact string) (string, string, error) {
	root := in.paths.StagingRoot

	if err := os.MkdirAll(root, stagingDirMode); err != nil {
		return "", "", errors.Wrapf(err, "creating staging root %s", root)
	}

	in.removeLeftovers(root)

	dir, err := os.MkdirTemp(root, stagingPrefix+"*")
	if err != nil {
		return "", "", errors.Wrapf(err, "creating staging directory in %s", root)
	}

	staged, err := in.extractor.Extract(ctx, artifact, dir)
	if err != nil {
		_ = os.RemoveAll(dir)

		var extractErr *ExtractionError
		if !errors.As(err, &extractErr) {
			err = &ExtractionError{Artifact: artifact, Err: err}
		}

		return "", "", err
	}

	return dir, staged, nil
}

func (in *Installer) removeLeftovers(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}

	for _, e := range entries {
		if e.Name() != ExtractedDirName && !strings.HasPrefix(e.Name(), stagingPrefix) {
			continue
		}

		path := filepath.Join(root, e.Name())
		if err := os.RemoveAll(path); err != nil {
			in.log.Warn("could not remove stale staging directory", "path", path, "error", err)

			continue
		}

		in.log.Debug("removed stale staging directory", "path", path)
	}
}

func (in *Installer) remediateSandbox(ctx context.Context, res *Result, staged string) error {
	helper := filepath.Join(staged, in.paths.SandboxHelper)

	if _, err := os.Lstat(helper); err != nil {
		msg := "sandbox helper not found at " + helper + "; the application may need --no-sandbox"
		in.log.Warn(msg)
		res.warn(msg)

		return nil
	}

	if err := in.fs.Chown(ctx, helper, rootID, rootID); err != nil {
		return &PermissionError{Op: "chown", Path: helper, Err: err}
	}

	if err := in.fs.Chmod(ctx, helper, sandboxMode); err != nil {
		return &PermissionError{Op: "chmod", Path: helper, Err: err}
	}

	return nil
}

// swapFailed handles a failed move into the live path. A backup made by this
// run is moved back when possible so the run ends Aborted.
func (in *Installer) swapFailed(ctx context.Context, res *Result, hadLive bool, err error) *Result {
	live := in.paths.InstallPath

	switch {
	case !hadLive && !exists(live):
		return in.failed(res, StateAborted, StepSwap, err)
	case res.BackupPath != "" && !exists(live):
		if restoreErr := in.fs.Move(ctx, res.BackupPath, live); restoreErr == nil {
			in.log.Warn("restored previous installation after failed swap", "backup", res.BackupPath)
			res.warn("restored previous installation from " + res.BackupPath)
			res.BackupPath = ""

			return in.failed(res, StateAborted, StepSwap, err)
		}

		res.Remediation = fmt.Sprintf(
			"no installation is live at %s; restore the previous one with `sudo mv %s %s`",
			live, res.BackupPath, live,
		)
	default:
		res.Remediation = fmt.Sprintf(
			"the installation at %s is missing or incomplete; run the updater again with --force",
			live,
		)
	}

	return in.failed(res, StatePartiallyInstalled, StepSwap, err)
}

func (in *Installer) refreshDesktop(ctx context.Context, res *Result) {
	dir := in.paths.ApplicationsDir

	info, err := os.Stat(dir)
	if dir == "" || err != nil || !info.IsDir() {
		in.log.Debug("desktop integration skipped", "step", StepRefresh, "dir", dir)

		return
	}

	in.trace(StepRefresh, "dir", dir)

	if err := in.refresher.Refresh(ctx, dir); err != nil {
		in.log.Warn("desktop database refresh failed", "step", StepRefresh, "error", err)
		res.warn("desktop database refresh failed: " + err.Error())
	}
}

func (in *Installer) cleanupStaging(res *Result, dir string) {
	in.trace(StepCleanup, "dir", dir)

	if err := os.RemoveAll(dir); err != nil {
		in.log.Warn("staging cleanup failed", "step", StepCleanup, "error", err)
		res.warn("could not remove staging directory " + dir)
	}
}

func (in *Installer) failed(res *Result, state State, step Step, err error) *Result {
	in.log.Error("installation step failed", "step", step, "state", state, "error", err)

	return res.fail(state, step, err)
}

func (in *Installer) trace(step Step, kv ...any) {
	in.log.Debug("step", append([]any{"step", step}, kv...)...)
}

func exists(path string) bool {
	_, err := os.Lstat(path)

	return err == nil
}
