package updater

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/internal/exec"
	"github.com/smykla-skalski/cursor-updater/internal/version"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
	"github.com/smykla-skalski/cursor-updater/pkg/logger"
)

const (
	desktopVersionKey = "X-AppImage-Version="
	probeTimeout      = 10 * time.Second
)

// ErrNotInstalled is returned by Probe.Current when there is no local installation.
var ErrNotInstalled = errors.New("not installed")

// ProbeError means an installation exists but its version could not be determined.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return "probing installed version at " + e.Path + ": " + e.Err.Error()
}

func (e *ProbeError) Unwrap() error { return e.Err }

// VersionProbe reports the locally installed version.
type VersionProbe interface {
	Current(ctx context.Context) (*version.Version, error)
}

// Probe finds the installed version from the desktop entry shipped inside the
// install tree, falling back to asking the launcher.
type Probe struct {
	installPath string
	desktopFile string
	launcher    string
	symlink     string
	runner      exec.CommandRunner
	log         logger.Logger
}

// NewProbe creates a Probe for the installation described by cfg.
func NewProbe(cfg *config.InstallConfig, runner exec.CommandRunner, log logger.Logger) *Probe {
	return &Probe{
		installPath: cfg.GetPath(),
		desktopFile: filepath.Join(cfg.GetPath(), cfg.GetDesktopFile()),
		launcher:    filepath.Join(cfg.GetPath(), cfg.GetLauncher()),
		symlink:     cfg.GetSymlink(),
		runner:      runner,
		log:         log,
	}
}

// Current implements VersionProbe.
func (p *Probe) Current(ctx context.Context) (*version.Version, error) {
	launcher := p.launcherPath()
	hasLauncher := isFile(launcher)
	hasDesktop := isFile(p.desktopFile)

	if !hasLauncher && !hasDesktop {
		return nil, ErrNotInstalled
	}

	if hasDesktop {
		v, err := readDesktopVersion(p.desktopFile)
		if err == nil {
			p.log.Debug("installed version from desktop entry", "path", p.desktopFile, "version", v.String())

			return &v, nil
		}

		p.log.Debug("desktop entry has no usable version", "path", p.desktopFile, "error", err)
	}

	if !hasLauncher {
		return nil, &ProbeError{Path: launcher, Err: errors.New("launcher not found")}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	res := p.runner.Run(ctx, launcher, "--version")
	if res.Failed() {
		err := res.Err
		if err == nil {
			err = errors.Newf("exited with status %d", res.ExitCode)
		}

		return nil, &ProbeError{Path: launcher, Err: err}
	}

	for line := range strings.SplitSeq(res.Stdout, "\n") {
		if v, err := version.Extract(line); err == nil {
			p.log.Debug("installed version from launcher", "path", launcher, "version", v.String())

			return &v, nil
		}
	}

	return nil, &ProbeError{Path: launcher, Err: errors.Wrapf(version.ErrNoVersion, "output %q", res.Stdout)}
}

// launcherPath prefers the user-facing symlink when it resolves into a file.
func (p *Probe) launcherPath() string {
	if isFile(p.symlink) {
		return p.symlink
	}

	return p.launcher
}

//nolint:gosec // G304: path is the configured desktop entry
func readDesktopVersion(path string) (version.Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return version.Version{}, errors.Wrap(err, "opening desktop entry")
	}
	defer f.Close() //nolint:errcheck // read-only file

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if v, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), desktopVersionKey); ok {
			return version.Parse(v)
		}
	}

	if err := scanner.Err(); err != nil {
		return version.Version{}, errors.Wrap(err, "reading desktop entry")
	}

	return version.Version{}, version.ErrNoVersion
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
