package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/cursor-updater/internal/config"
	"github.com/smykla-skalski/cursor-updater/internal/doctor"
	"github.com/smykla-skalski/cursor-updater/internal/doctor/checkers"
	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/internal/updater"
	"github.com/smykla-skalski/cursor-updater/internal/xdg"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the installation and the updater's environment",
	Long: `Check the installation and everything the updater depends on.

Checks:
  - Configuration loads and validates
  - Installed version, launcher symlink, sandbox helper and backups
  - sudo and update-desktop-database are available when needed
  - State, download and staging directories are writable

Exits with status 1 when a check reports an error.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, cfgErr := loadConfig()
	if cfgErr != nil {
		cfg = internalconfig.DefaultConfig(xdg.DefaultResolver())
	}

	a, err := newAppFor(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	crashRun.Command = "doctor"

	registry := a.newDoctorRegistry(cfgErr)
	results := registry.RunAll(cmd.Context())

	a.printf("%s\n", renderDoctorTable(results, a))

	summary := doctor.Summarize(results)
	a.printf("\n%d passed, %d warning(s), %d error(s), %d skipped\n",
		summary.Passed, summary.Warnings, summary.Errors, summary.Skipped)

	if summary.Errors > 0 {
		return withExitCode(updater.ExitFailed, nil)
	}

	return nil
}

func (a *app) newDoctorRegistry(cfgErr error) *doctor.Registry {
	inst := a.cfg.GetInstall()
	registry := doctor.NewRegistry()

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = internalconfig.NewWriter().GlobalConfigPath()
	}

	registry.RegisterChecker(checkers.NewConfigChecker(cfgPath, func() error { return cfgErr }))

	registry.RegisterChecker(checkers.NewInstalledChecker(inst, updater.NewProbe(inst, a.runner, a.log), updater.ErrNotInstalled))
	registry.RegisterChecker(checkers.NewLauncherChecker(inst))
	registry.RegisterChecker(checkers.NewSandboxChecker(inst))
	registry.RegisterChecker(checkers.NewBackupChecker(inst))

	_, needsSudo := installer.SelectPrivileged(inst.GetPrivilege(), a.installRunner).(*installer.SudoFS)
	registry.RegisterChecker(checkers.NewSudoChecker(a.tools, needsSudo))
	registry.RegisterChecker(checkers.NewDesktopDatabaseChecker(a.tools))

	registry.RegisterChecker(checkers.NewDirChecker("State", xdg.StateDir()))
	registry.RegisterChecker(checkers.NewDirChecker("Download", inst.DownloadDir))
	registry.RegisterChecker(checkers.NewDirChecker("Staging", inst.StagingDir))

	return registry
}

// statusIcon returns a single-width icon for a check result.
func statusIcon(r doctor.CheckResult, a *app) string {
	switch {
	case r.IsPassed():
		return a.theme.Success.Render("✓")
	case r.IsError():
		return a.theme.Error.Render("✗")
	case r.IsWarning():
		return a.theme.Warning.Render("!")
	case r.Status == doctor.StatusFail:
		return a.theme.Info.Render("i")
	default:
		return a.theme.Muted.Render("-")
	}
}

func renderDoctorTable(results []doctor.CheckResult, a *app) string {
	rows := make([][]string, 0, len(results))

	for _, r := range results {
		msg := r.Message
		if !r.IsPassed() && len(r.Details) > 0 {
			msg = fmt.Sprintf("%s\n%s", msg, a.theme.Muted.Render(strings.Join(r.Details, "\n")))
		}

		rows = append(rows, []string{statusIcon(r, a), string(r.Category), r.Name, msg})
	}

	return renderTable([]string{"", "Category", "Check", "Message"}, rows)
}
