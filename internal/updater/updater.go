// Package updater decides whether a newer application release exists and
// drives download and installation of it.
package updater

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/internal/version"
	"github.com/smykla-skalski/cursor-updater/pkg/logger"
)

// Outcome is the result of one updater run.
type Outcome string

const (
	OutcomeUpToDate           Outcome = "UpToDate"
	OutcomeUpdateAvailable    Outcome = "UpdateAvailable"
	OutcomeAlreadyCurrent     Outcome = "AlreadyCurrent"
	OutcomeInstalled          Outcome = "Installed"
	OutcomeAborted            Outcome = "Aborted"
	OutcomePartiallyInstalled Outcome = "PartiallyInstalled"
	OutcomeFailed             Outcome = "Failed"
)

// Process exit codes.
const (
	ExitOK                 = 0
	ExitFailed             = 1
	ExitUpdateAvailable    = 2
	ExitCrash              = 3
	ExitPartiallyInstalled = 4
)

// ExitCode maps the outcome to the process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeUpToDate, OutcomeAlreadyCurrent, OutcomeInstalled:
		return ExitOK
	case OutcomeUpdateAvailable:
		return ExitUpdateAvailable
	case OutcomePartiallyInstalled:
		return ExitPartiallyInstalled
	default:
		return ExitFailed
	}
}

// Options selects the run mode.
type Options struct {
	// CheckOnly reports the plan without downloading or installing.
	CheckOnly bool
	// Force installs even when the local version is current.
	Force bool
	// NoBackup deletes the live tree instead of keeping a backup generation.
	NoBackup bool
	// Verbose adds diagnostic detail to the log. It does not change control flow.
	Verbose bool
}

// Report describes what a run found and did.
type Report struct {
	Outcome Outcome
	// Current is nil when nothing is installed or the probe failed.
	Current  *version.Version
	ProbeErr error
	Release  *Release
	Plan     *Plan
	Install  *installer.Result
	Err      error
}

// BundleInstaller installs a downloaded artifact.
type BundleInstaller interface {
	Install(ctx context.Context, artifact string, opts ...installer.InstallOption) *installer.Result
}

// ArtifactFetcher downloads a release artifact.
type ArtifactFetcher interface {
	Download(ctx context.Context, rawURL, destPath string, progress ProgressFunc, opts ...DownloadOption) (string, error)
}

// Updater orchestrates the update process.
type Updater struct {
	probe           VersionProbe
	locator         ReleaseLocator
	downloader      ArtifactFetcher
	installer       BundleInstaller
	log             logger.Logger
	progress        ProgressFunc
	downloadDir     string
	metadataTimeout time.Duration
	downloadTimeout time.Duration
}

// Option configures an Updater.
type Option func(*Updater)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(u *Updater) { u.log = log }
}

// WithProgress sets the download progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(u *Updater) { u.progress = fn }
}

// WithDownloadDir sets where artifacts are downloaded to.
func WithDownloadDir(dir string) Option {
	return func(u *Updater) { u.downloadDir = dir }
}

// WithTimeouts bounds the metadata request and the download. Zero means no bound.
func WithTimeouts(metadata, download time.Duration) Option {
	return func(u *Updater) {
		u.metadataTimeout = metadata
		u.downloadTimeout = download
	}
}

// NewUpdater creates a new Updater.
func NewUpdater(
	probe VersionProbe,
	locator ReleaseLocator,
	downloader ArtifactFetcher,
	inst BundleInstaller,
	opts ...Option,
) *Updater {
	u := &Updater{
		probe:       probe,
		locator:     locator,
		downloader:  downloader,
		installer:   inst,
		log:         logger.NewNoOpLogger(),
		downloadDir: os.TempDir(),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Run probes, plans and, unless the plan or options say otherwise, downloads
// and installs the latest release. The report is always returned; the error
// is the report's Err.
func (u *Updater) Run(ctx context.Context, opts Options) (*Report, error) {
	rep := &Report{}

	u.log.Debug("run started", "check", opts.CheckOnly, "force", opts.Force,
		"no_backup", opts.NoBackup, "verbose", opts.Verbose)

	probeFailed, err := u.probeCurrent(ctx, rep)
	if err != nil {
		return u.failed(rep, "probe", err)
	}

	release, err := u.fetchLatest(ctx)
	if err != nil {
		return u.failed(rep, "fetch", err)
	}

	rep.Release = release
	u.log.Info("latest release", "version", release.Version.String(), "source", release.Source)

	if opts.CheckOnly {
		plan := ComputePlan(rep.Current, release.Version, false, probeFailed)
		rep.Plan = &plan
		rep.Outcome = OutcomeUpToDate

		if plan.ShouldUpdate {
			rep.Outcome = OutcomeUpdateAvailable
		}

		u.log.Info("check finished", "outcome", rep.Outcome, "reason", plan.Reason)

		return rep, nil
	}

	plan := ComputePlan(rep.Current, release.Version, opts.Force, probeFailed)
	rep.Plan = &plan

	u.log.Info("update plan", "should_update", plan.ShouldUpdate, "reason", plan.Reason,
		"from", plan.FromString(), "to", plan.To.String())

	if !plan.ShouldUpdate {
		rep.Outcome = OutcomeAlreadyCurrent

		return rep, nil
	}

	artifact, err := u.download(ctx, release)
	if err != nil {
		return u.failed(rep, "download", err)
	}

	defer u.removeArtifact(artifact)

	var installOpts []installer.InstallOption
	if opts.NoBackup {
		installOpts = append(installOpts, installer.WithoutBackup())
	}

	result := u.installer.Install(ctx, artifact, installOpts...)
	rep.Install = result

	switch result.State {
	case installer.StateInstalled:
		rep.Outcome = OutcomeInstalled
		u.log.Info("update installed", "version", release.Version.String(), "backup", result.BackupPath)
	case installer.StatePartiallyInstalled:
		rep.Outcome = OutcomePartiallyInstalled
		rep.Err = result.Err
	default:
		rep.Outcome = OutcomeAborted
		rep.Err = result.Err
	}

	return rep, rep.Err
}

// probeCurrent fills rep.Current. A *ProbeError is recorded and reported as
// probeFailed; any other error ends the run.
func (u *Updater) probeCurrent(ctx context.Context, rep *Report) (bool, error) {
	current, err := u.probe.Current(ctx)

	var probeErr *ProbeError

	switch {
	case err == nil:
		rep.Current = current
		u.log.Info("installed version", "version", current.String())

		return false, nil
	case errors.Is(err, ErrNotInstalled):
		u.log.Info("no local installation found")

		return false, nil
	case errors.As(err, &probeErr):
		rep.ProbeErr = err
		u.log.Warn("could not determine installed version", "error", err)

		return true, nil
	default:
		return false, err
	}
}

func (u *Updater) fetchLatest(ctx context.Context) (*Release, error) {
	if u.metadataTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, u.metadataTimeout)
		defer cancel()
	}

	return u.locator.Latest(ctx)
}

func (u *Updater) download(ctx context.Context, release *Release) (string, error) {
	if u.downloadTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, u.downloadTimeout)
		defer cancel()
	}

	var opts []DownloadOption
	if release.SHA256 != "" {
		opts = append(opts, WithSHA256(release.SHA256))
	}

	if release.SizeHint > 0 {
		opts = append(opts, WithExpectedSize(release.SizeHint))
	}

	dest := filepath.Join(u.downloadDir, ArtifactName(release.DownloadURL))
	u.log.Info("downloading", "url", release.DownloadURL, "dest", dest)

	return u.downloader.Download(ctx, release.DownloadURL, dest, u.progress, opts...)
}

//nolint:gosec // G703: path was produced by the downloader
func (u *Updater) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		u.log.Warn("could not remove downloaded artifact", "path", path, "error", err)
	}
}

func (u *Updater) failed(rep *Report, step string, err error) (*Report, error) {
	rep.Outcome = OutcomeFailed
	rep.Err = err
	u.log.Error("update failed", "step", step, "error", err)

	return rep, err
}
