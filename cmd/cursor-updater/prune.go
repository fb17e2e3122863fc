package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/cursor-updater/internal/history"
	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/internal/tui"
)

const defaultKeep = 2

var (
	pruneKeep int
	pruneYes  bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune-backups",
	Short: "Delete old backup generations",
	Long: `Delete all but the newest --keep backup generations.

The newest backup is always kept.`,
	Example: `  cursor-updater prune-backups            # keep the two newest
  cursor-updater prune-backups --keep 1 --yes`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", defaultKeep, "Number of backups to keep (at least 1)")
	pruneCmd.Flags().BoolVarP(&pruneYes, "yes", "y", false, "Do not ask for confirmation")
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if pruneKeep < 1 {
		return installer.ErrInvalidKeep
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	installPath := a.cfg.GetInstall().GetPath()
	crashRun.Command = "prune-backups"
	crashRun.InstallPath = installPath

	backups, err := installer.ListBackups(installPath)
	if err != nil {
		return err
	}

	if len(backups) <= pruneKeep {
		a.printf("Nothing to prune, %d backup(s) of %s\n", len(backups), installPath)

		return nil
	}

	doomed := len(backups) - pruneKeep

	if !pruneYes {
		ok, confirmErr := tui.New().Confirm(tui.ConfirmOptions{
			Title: fmt.Sprintf("Delete %d old backup(s) of %s?", doomed, installPath),
		})
		if confirmErr != nil {
			return errors.Wrap(confirmErr, "confirming prune")
		}

		if !ok {
			a.printf("Prune cancelled\n")

			return nil
		}
	}

	inst, err := a.newInstaller(cmd.Context())
	if err != nil {
		return err
	}

	sizes := make(map[string]int64, doomed)
	for i, n := range backupSizes(cmd, backups[pruneKeep:]) {
		sizes[backups[pruneKeep+i].Path] = n
	}

	removed, pruneErr := inst.Prune(cmd.Context(), pruneKeep)

	var freed int64

	for _, b := range removed {
		a.printf("%s\n", a.theme.Status("ok", "Removed "+b.Name))
		freed += max(sizes[b.Path], 0)
	}

	entry := history.Entry{
		Operation: history.OperationPrune,
		Outcome:   fmt.Sprintf("removed %d", len(removed)),
		Success:   pruneErr == nil,
		Extra:     map[string]any{"keep": pruneKeep},
	}

	if pruneErr != nil {
		entry.Error = pruneErr.Error()
	}

	a.record(entry)

	if freed > 0 {
		a.printf("%s\n", a.theme.Muted.Render("Freed "+humanize.Bytes(uint64(freed))))
	}

	return pruneErr
}
