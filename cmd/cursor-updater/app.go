package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/internal/color"
	internalconfig "github.com/smykla-skalski/cursor-updater/internal/config"
	"github.com/smykla-skalski/cursor-updater/internal/exec"
	"github.com/smykla-skalski/cursor-updater/internal/history"
	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/internal/xdg"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
	"github.com/smykla-skalski/cursor-updater/pkg/logger"
)

const (
	commandRunTimeout = 2 * time.Minute
	sudoTool          = "sudo"
	desktopDBTool     = "update-desktop-database"
)

// app holds what every command needs.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	closeLog func()
	theme    color.Theme
	color    bool
	runner   exec.CommandRunner
	tools    exec.ToolChecker
	recorder history.Recorder
	out      io.Writer

	// installRunner has no default deadline; extraction and cross-device
	// moves of the application tree take as long as they take.
	installRunner exec.CommandRunner
}

// newApp loads configuration and sets up logging. The caller must call close.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return newAppFor(cfg)
}

// newAppFor sets up logging and history for an already loaded configuration.
func newAppFor(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:           cfg,
		log:           logger.NewNoOpLogger(),
		closeLog:      func() {},
		runner:        exec.NewCommandRunner(commandRunTimeout),
		installRunner: exec.NewCommandRunner(0),
		tools:         exec.NewToolChecker(),
		out:           os.Stdout,
	}

	a.color = color.Profile(noColorFlag || !cfg.GetOutput().IsColorEnabled()) && color.IsTerminal(os.Stdout)
	a.theme = color.NewTheme(a.color)

	opts := logger.Options{
		FilePath:  xdg.LogFile(),
		FileLevel: logger.LevelFromFlags(verboseFlag),
	}

	if verboseFlag {
		opts.Console = os.Stderr
		opts.ConsoleLevel = logger.ConsoleLevelFromFlags(verboseFlag)
	}

	if log, logErr := logger.NewLogger(opts); logErr == nil {
		a.log = log
		a.closeLog = func() { _ = log.Close() }
	} else {
		fmt.Fprintf(os.Stderr, "warning: %v\n", logErr)
	}

	if xdg.NeedsMigration() {
		if _, migErr := xdg.Migrate(a.log); migErr != nil {
			a.log.Warn("legacy log migration failed", "error", migErr)
		}
	}

	recorder, err := history.NewJSONLRecorder(xdg.HistoryFile())
	if err != nil {
		return nil, err
	}

	a.recorder = recorder
	a.log.Debug("configuration loaded", "install", cfg.GetInstall().GetPath(),
		"source", cfg.GetSource().GetType())

	return a, nil
}

func (a *app) close() {
	a.closeLog()
}

// loadConfig loads configuration from all sources with precedence.
func loadConfig() (*config.Config, error) {
	loader := internalconfig.NewKoanfLoader()
	if configPath != "" {
		loader = loader.WithConfigFile(configPath)
	}

	cfg, err := loader.Load(buildFlagsMap())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	return cfg, nil
}

// buildFlagsMap converts CLI flags to a map for the config provider.
func buildFlagsMap() map[string]any {
	return map[string]any{
		"no-backup":   noBackupFlag,
		"privilege":   privilegeFlag,
		"install-dir": installDir,
		"symlink":     symlinkFlag,
		"source":      sourceFlag,
		"timeout":     timeoutFlag,
		"no-color":    noColorFlag,
	}
}

// newInstaller wires the installer with the privilege mode from config.
// Sudo credentials are validated up front so the pipeline never prompts
// half way through.
func (a *app) newInstaller(ctx context.Context) (*installer.Installer, error) {
	inst := a.cfg.GetInstall()
	fs := installer.SelectPrivileged(inst.GetPrivilege(), a.installRunner)

	if sudo, ok := fs.(*installer.SudoFS); ok {
		if err := a.tools.RequireTool(sudoTool); err != nil {
			return nil, errors.Wrap(err, "installing into a system directory needs sudo")
		}

		a.log.Info("validating sudo credentials")

		if err := sudo.Validate(ctx); err != nil {
			return nil, err
		}
	}

	if !a.tools.IsAvailable(desktopDBTool) {
		a.log.Warn("desktop database tool not found, menu entries will not be refreshed", "tool", desktopDBTool)
	}

	a.log.Debug("privilege mode selected", "mode", inst.GetPrivilege(), "impl", fmt.Sprintf("%T", fs))

	return installer.New(
		installer.PathsFromConfig(inst),
		fs,
		installer.NewAppImageExtractor(a.installRunner),
		installer.NewDesktopDatabase(a.runner),
		a.log,
	), nil
}

// httpClient returns a client for release lookups.
func (a *app) httpClient() *http.Client {
	return &http.Client{Transport: http.DefaultTransport}
}

// record appends to the run history; failures only reach the log.
func (a *app) record(entry history.Entry) {
	if err := a.recorder.Record(entry); err != nil {
		a.log.Warn("could not record run history", "error", err)
	}
}

// printf writes to the command output.
func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
