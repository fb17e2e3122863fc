// Package main provides the CLI entry point for cursor-updater.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/cursor-updater/internal/updater"
)

var (
	checkFlag     bool
	forceFlag     bool
	noBackupFlag  bool
	verboseFlag   bool
	configPath    string
	noColorFlag   bool
	privilegeFlag string
	installDir    string
	symlinkFlag   string
	sourceFlag    string
	timeoutFlag   string
)

// exitError carries a specific process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}

	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// withExitCode attaches code to err. A nil err with a non-zero code still
// produces an error so cobra stops.
func withExitCode(code int, err error) error {
	if code == updater.ExitOK {
		return err
	}

	return &exitError{code: code, err: err}
}

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			handlePanic(r)

			exitCode = updater.ExitCrash
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return exitCodeFor(rootCmd.ExecuteContext(ctx))
}

// exitCodeFor reports err on stderr and maps it to an exit status.
func exitCodeFor(err error) int {
	if err == nil {
		return updater.ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		// Commands print their own report before returning an exitError.
		return ee.code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	return updater.ExitFailed
}

var rootCmd = &cobra.Command{
	Use:   "cursor-updater",
	Short: "Install and update the Cursor AppImage",
	Long: `Install and update the Cursor editor from its AppImage bundle.

Checks the latest release, downloads it, extracts it into a staging
directory and swaps it into place, keeping the previous installation as a
backup generation that can be restored with 'cursor-updater rollback'.

Exit codes:
  0  installed, already current, or --check found nothing new
  1  failed or aborted (the previous installation is intact)
  2  --check found an update
  3  crashed
  4  partially installed (see the printed remediation)`,
	Example: `  cursor-updater              # update if a newer release exists
  cursor-updater --check      # only report
  cursor-updater --force      # reinstall the latest release
  cursor-updater --no-backup  # replace without keeping a backup`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		checkVersionFlag()
	},
	RunE:              runUpdate,
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	rootCmd.Flags().BoolVar(&checkFlag, "check", false, "Only check whether an update is available")
	rootCmd.Flags().BoolVar(&forceFlag, "force", false, "Install even if the installed version is current")
	rootCmd.Flags().BoolVar(&noBackupFlag, "no-backup", false, "Delete the current installation instead of backing it up")
	rootCmd.Flags().StringVar(&sourceFlag, "source", "", "Release source: cursor or github")
	rootCmd.Flags().StringVar(&timeoutFlag, "timeout", "", "Timeout for the release metadata request (e.g. 15s)")

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log every step to stderr")
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"Path to configuration file (default: $XDG_CONFIG_HOME/cursor-updater/config.toml)",
	)
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&privilegeFlag, "privilege", "", "Privilege mode: auto, sudo or direct")
	rootCmd.PersistentFlags().StringVar(&installDir, "install-dir", "", "Installation directory (default: /opt/cursor)")
	rootCmd.PersistentFlags().StringVar(&symlinkFlag, "symlink", "", "Launcher symlink (default: /usr/local/bin/cursor)")
}
