package checkers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"

	"github.com/smykla-skalski/cursor-updater/internal/doctor"
	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/internal/version"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

// MaxBackups is the backup count above which pruning is suggested.
const MaxBackups = 3

// VersionProbe reads the installed version.
type VersionProbe interface {
	Current(ctx context.Context) (*version.Version, error)
}

// InstalledChecker reports the installed version.
type InstalledChecker struct {
	path     string
	probe    VersionProbe
	notFound error
}

// NewInstalledChecker creates an InstalledChecker. notFound is the error the
// probe returns when nothing is installed.
func NewInstalledChecker(cfg *config.InstallConfig, probe VersionProbe, notFound error) *InstalledChecker {
	return &InstalledChecker{path: cfg.GetPath(), probe: probe, notFound: notFound}
}

// Name returns the name of the check
func (*InstalledChecker) Name() string { return "Installed version" }

// Category returns the category of the check
func (*InstalledChecker) Category() doctor.Category { return doctor.CategoryInstall }

// Check probes the installation.
func (c *InstalledChecker) Check(ctx context.Context) doctor.CheckResult {
	v, err := c.probe.Current(ctx)

	switch {
	case err == nil:
		return doctor.Pass(c.Name(), fmt.Sprintf("Cursor %s at %s", v, c.path))
	case errors.Is(err, c.notFound):
		return doctor.Skip(c.Name(), "Cursor is not installed at "+c.path).
			WithDetails("Run: cursor-updater")
	default:
		return doctor.FailWarning(c.Name(), "Installed version could not be read").
			WithDetails(err.Error(), "Run: cursor-updater --force")
	}
}

// LauncherChecker verifies the launcher symlink points into the installation.
type LauncherChecker struct {
	paths installer.Paths
}

// NewLauncherChecker creates a LauncherChecker.
func NewLauncherChecker(cfg *config.InstallConfig) *LauncherChecker {
	return &LauncherChecker{paths: installer.PathsFromConfig(cfg)}
}

// Name returns the name of the check
func (*LauncherChecker) Name() string { return "Launcher symlink" }

// Category returns the category of the check
func (*LauncherChecker) Category() doctor.Category { return doctor.CategoryInstall }

// Check reads the symlink.
func (c *LauncherChecker) Check(_ context.Context) doctor.CheckResult {
	link := c.paths.Symlink
	want := c.paths.LauncherTarget()
	fix := fmt.Sprintf("Run: sudo ln -sfn %s %s", want, link)

	if _, err := os.Stat(c.paths.InstallPath); err != nil {
		return doctor.Skip(c.Name(), "Nothing installed")
	}

	target, err := os.Readlink(link)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doctor.FailWarning(c.Name(), link+" does not exist").WithDetails(fix)
		}

		return doctor.FailWarning(c.Name(), link+" is not a symlink").WithDetails(fix)
	}

	if filepath.Clean(target) != filepath.Clean(want) {
		return doctor.FailWarning(c.Name(), fmt.Sprintf("%s points at %s", link, target)).
			WithDetails("Expected "+want, fix)
	}

	if _, err := os.Stat(link); err != nil {
		return doctor.FailWarning(c.Name(), link+" is dangling").WithDetails(fix)
	}

	return doctor.Pass(c.Name(), link+" -> "+target)
}

// SandboxChecker verifies the sandbox helper is root-owned and setuid.
type SandboxChecker struct {
	helper string
}

// NewSandboxChecker creates a SandboxChecker.
func NewSandboxChecker(cfg *config.InstallConfig) *SandboxChecker {
	return &SandboxChecker{helper: filepath.Join(cfg.GetPath(), cfg.GetSandboxHelper())}
}

// Name returns the name of the check
func (*SandboxChecker) Name() string { return "Sandbox helper" }

// Category returns the category of the check
func (*SandboxChecker) Category() doctor.Category { return doctor.CategoryInstall }

// Check stats the helper.
func (c *SandboxChecker) Check(_ context.Context) doctor.CheckResult {
	var st unix.Stat_t
	if err := unix.Stat(c.helper, &st); err != nil {
		return doctor.Skip(c.Name(), "No sandbox helper at "+c.helper)
	}

	fix := fmt.Sprintf("Run: sudo chown root:root %s && sudo chmod 4755 %s", c.helper, c.helper)

	if st.Uid != 0 {
		return doctor.FailWarning(c.Name(), "Not owned by root").
			WithDetails("Cursor may refuse to start without --no-sandbox", fix)
	}

	if st.Mode&unix.S_ISUID == 0 {
		return doctor.FailWarning(c.Name(), "Setuid bit missing").
			WithDetails("Cursor may refuse to start without --no-sandbox", fix)
	}

	return doctor.Pass(c.Name(), "Root-owned and setuid")
}

// BackupChecker counts backup generations.
type BackupChecker struct {
	installPath string
}

// NewBackupChecker creates a BackupChecker.
func NewBackupChecker(cfg *config.InstallConfig) *BackupChecker {
	return &BackupChecker{installPath: cfg.GetPath()}
}

// Name returns the name of the check
func (*BackupChecker) Name() string { return "Backups" }

// Category returns the category of the check
func (*BackupChecker) Category() doctor.Category { return doctor.CategoryInstall }

// Check lists backups.
func (c *BackupChecker) Check(_ context.Context) doctor.CheckResult {
	backups, err := installer.ListBackups(c.installPath)
	if err != nil {
		return doctor.FailWarning(c.Name(), "Backups could not be listed").WithDetails(err.Error())
	}

	switch n := len(backups); {
	case n == 0:
		return doctor.Pass(c.Name(), "No backups, rollback is not possible")
	case n > MaxBackups:
		return doctor.FailWarning(c.Name(), fmt.Sprintf("%d backups kept", n)).
			WithDetails("Run: cursor-updater prune-backups")
	default:
		return doctor.Pass(c.Name(), fmt.Sprintf("%d backup(s), newest %s", n, backups[0].Name))
	}
}
