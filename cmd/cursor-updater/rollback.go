package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/cursor-updater/internal/history"
	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/internal/tui"
	"github.com/smykla-skalski/cursor-updater/internal/updater"
)

var rollbackYes bool

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore the newest backup generation",
	Long: `Restore the newest backup generation and point the launcher at it.

The current installation is moved aside as a new backup, so a rollback can
itself be rolled back.`,
	Args: cobra.NoArgs,
	RunE: runRollback,
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
	rollbackCmd.Flags().BoolVarP(&rollbackYes, "yes", "y", false, "Do not ask for confirmation")
}

func runRollback(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	installPath := a.cfg.GetInstall().GetPath()
	crashRun.Command = "rollback"
	crashRun.InstallPath = installPath

	backups, err := installer.ListBackups(installPath)
	if err != nil {
		return err
	}

	if len(backups) == 0 {
		a.printf("%s\n", a.theme.Status("warn", "No backups of "+installPath+" to restore"))

		return withExitCode(updater.ExitFailed, installer.ErrNoBackups)
	}

	if !rollbackYes {
		ok, confirmErr := tui.New().Confirm(tui.ConfirmOptions{
			Title:       fmt.Sprintf("Restore %s?", backups[0].Path),
			Description: fmt.Sprintf("The current %s is kept as a new backup.", installPath),
		})
		if confirmErr != nil {
			return errors.Wrap(confirmErr, "confirming rollback")
		}

		if !ok {
			a.printf("Rollback cancelled\n")

			return nil
		}
	}

	inst, err := a.newInstaller(cmd.Context())
	if err != nil {
		return err
	}

	res, err := inst.Rollback(cmd.Context())
	if err != nil {
		return err
	}

	entry := history.Entry{
		Operation: history.OperationRollback,
		Outcome:   string(res.State),
		To:        backups[0].Name,
		Backup:    res.BackupPath,
		Success:   res.OK(),
	}

	for _, w := range res.Warnings {
		a.printf("%s\n", a.theme.Status("warn", w))
	}

	switch res.State {
	case installer.StateInstalled:
		a.printf("%s\n", a.theme.Status("ok", "Restored "+backups[0].Name))

		if res.BackupPath != "" {
			a.printf("%s\n", a.theme.Muted.Render("Previous installation kept at "+res.BackupPath))
		}

		a.record(entry)

		return nil
	case installer.StatePartiallyInstalled:
		entry.Error = res.Err.Error()
		a.record(entry)
		a.printf("%s\n  %s\n", a.theme.Status("error", "Rollback partially completed"), res.Err)
		a.printf("\n%s\n%s\n", a.theme.Header.Render("To finish manually:"), res.Remediation)

		return withExitCode(updater.ExitPartiallyInstalled, res.Err)
	default:
		entry.Error = res.Err.Error()
		a.record(entry)
		a.printf("%s\n  %s\n", a.theme.Status("error", "Rollback aborted, nothing was changed"), res.Err)

		return withExitCode(updater.ExitFailed, res.Err)
	}
}
