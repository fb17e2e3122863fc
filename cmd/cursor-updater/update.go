package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/cursor-updater/internal/github"
	"github.com/smykla-skalski/cursor-updater/internal/history"
	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/internal/tui"
	"github.com/smykla-skalski/cursor-updater/internal/updater"
)

const downloadLabel = "Downloading"

func runUpdate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	install := a.cfg.GetInstall()
	crashRun.Command = "update"
	crashRun.InstallPath = install.GetPath()
	crashRun.Source = string(a.cfg.GetSource().GetType())
	crashRun.CheckOnly = checkFlag
	crashRun.Force = forceFlag
	crashRun.NoBackup = !install.IsBackupEnabled()

	up, bar, err := a.newUpdater()
	if err != nil {
		return err
	}

	started := time.Now()

	rep, runErr := up.Run(cmd.Context(), updater.Options{
		CheckOnly: checkFlag,
		Force:     forceFlag,
		NoBackup:  !install.IsBackupEnabled(),
		Verbose:   verboseFlag,
	})

	bar.done()

	a.log.Info("run finished", "outcome", rep.Outcome,
		"elapsed", durafmt.Parse(time.Since(started)).LimitFirstN(2).String())

	a.printReport(rep)
	a.recordRun(rep)

	return withExitCode(rep.Outcome.ExitCode(), runErr)
}

// newUpdater wires the update pipeline from configuration.
func (a *app) newUpdater() (*updater.Updater, *progressSink, error) {
	network := a.cfg.GetNetwork()
	client := a.httpClient()

	gh, err := github.NewClient(github.WithHTTPClient(client), github.WithCommandRunner(a.runner, a.tools))
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating GitHub client")
	}

	locator, err := updater.NewLocator(a.cfg.GetSource(), client, gh)
	if err != nil {
		return nil, nil, err
	}

	bar := &progressSink{newBar: func() *tui.Progress {
		return tui.NewProgress(os.Stderr, downloadLabel, tui.WithColor(a.color))
	}}

	inst := a.cfg.GetInstall()
	up := updater.NewUpdater(
		updater.NewProbe(inst, a.runner, a.log),
		locator,
		updater.NewDownloader(client, updater.WithProgressInterval(network.GetProgressInterval())),
		&lazyInstaller{app: a},
		updater.WithLogger(a.log),
		updater.WithProgress(bar.update),
		updater.WithDownloadDir(inst.DownloadDir),
		updater.WithTimeouts(network.GetTimeout(), network.GetDownloadTimeout()),
	)

	return up, bar, nil
}

// lazyInstaller builds the installer on first use so sudo is only asked for
// when there is something to install.
type lazyInstaller struct {
	app *app
}

func (l *lazyInstaller) Install(ctx context.Context, artifact string, opts ...installer.InstallOption) *installer.Result {
	crashRun.Step = "install"

	inst, err := l.app.newInstaller(ctx)
	if err != nil {
		return &installer.Result{
			State: installer.StateAborted,
			Step:  installer.StepExtract,
			Err:   &installer.StepError{Step: installer.StepExtract, Err: err},
		}
	}

	return inst.Install(ctx, artifact, opts...)
}

// progressSink creates the progress bar on the first callback.
type progressSink struct {
	newBar func() *tui.Progress
	bar    *tui.Progress
}

func (p *progressSink) update(received, total int64) {
	if p.bar == nil {
		crashRun.Step = "download"
		p.bar = p.newBar()
	}

	p.bar.Update(received, total)
}

func (p *progressSink) done() {
	if p.bar != nil {
		p.bar.Done()
		p.bar = nil
	}
}

func (a *app) printReport(rep *updater.Report) {
	t := a.theme

	if rep.Plan != nil {
		a.printf("Installed: %s\n", t.Version.Render(rep.Plan.FromString()))
		a.printf("Latest:    %s\n", t.Version.Render(rep.Plan.To.String()))
	}

	if rep.ProbeErr != nil {
		a.printf("%s\n", t.Status("warn", rep.ProbeErr.Error()))
	}

	switch rep.Outcome {
	case updater.OutcomeUpToDate, updater.OutcomeAlreadyCurrent:
		a.printf("%s\n", t.Status("ok", "Cursor is up to date"))
	case updater.OutcomeUpdateAvailable:
		a.printf("%s\n", t.Status("info", "An update is available ("+string(rep.Plan.Reason)+"), run 'cursor-updater' to install it"))
	case updater.OutcomeInstalled:
		a.printf("%s\n", t.Status("ok", "Installed Cursor "+rep.Plan.To.String()))

		if rep.Install != nil && rep.Install.BackupPath != "" {
			a.printf("%s\n", t.Muted.Render("Previous installation kept at "+rep.Install.BackupPath))
		}
	case updater.OutcomeAborted:
		a.printf("%s\n", t.Status("error", "Update aborted, the previous installation is intact"))
	case updater.OutcomePartiallyInstalled:
		a.printf("%s\n", t.Status("error", "Update partially installed"))
	case updater.OutcomeFailed:
		a.printf("%s\n", t.Status("error", "Update failed"))
	}

	if rep.Install != nil {
		for _, w := range rep.Install.Warnings {
			a.printf("%s\n", t.Status("warn", w))
		}
	}

	if rep.Err != nil {
		a.printf("  %s\n", rep.Err)

		if hint := updater.Hint(rep.Err); hint != "" {
			a.printf("  %s\n", t.Muted.Render("hint: "+hint))
		}
	}

	if rep.Install != nil && rep.Install.Remediation != "" {
		a.printf("\n%s\n%s\n", t.Header.Render("To finish manually:"), rep.Install.Remediation)
	}
}

func (a *app) recordRun(rep *updater.Report) {
	entry := history.Entry{
		Operation: history.OperationUpdate,
		Outcome:   string(rep.Outcome),
		Success:   rep.Outcome.ExitCode() != updater.ExitFailed && rep.Outcome != updater.OutcomePartiallyInstalled,
	}

	if checkFlag {
		entry.Operation = history.OperationCheck
	}

	if rep.Release != nil {
		entry.Source = rep.Release.Source
	}

	if rep.Plan != nil {
		entry.From = rep.Plan.FromString()
		entry.To = rep.Plan.To.String()
		entry.Extra = map[string]any{"reason": string(rep.Plan.Reason)}
	}

	if rep.Install != nil {
		entry.Backup = rep.Install.BackupPath
	}

	if rep.Err != nil {
		entry.Error = strings.TrimSpace(rep.Err.Error())
	}

	a.record(entry)
}
