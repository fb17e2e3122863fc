// Package checkers provides the health checks run by the doctor command.
package checkers

import (
	"context"
	"fmt"

	"github.com/smykla-skalski/cursor-updater/internal/doctor"
	"github.com/smykla-skalski/cursor-updater/internal/exec"
)

// ToolChecker checks that an external command is on PATH.
type ToolChecker struct {
	toolName     string
	alternatives []string
	description  string
	severity     doctor.Severity
	installHint  string
	tools        exec.ToolChecker
}

// NewSudoChecker checks for sudo. It is an error only when installs need it.
func NewSudoChecker(tools exec.ToolChecker, required bool) *ToolChecker {
	severity := doctor.SeverityInfo
	if required {
		severity = doctor.SeverityError
	}

	return &ToolChecker{
		toolName:     "sudo",
		alternatives: []string{"sudo"},
		description:  "Installing into system directories",
		severity:     severity,
		installHint:  "Install sudo or use --privilege direct with a writable install directory",
		tools:        tools,
	}
}

// NewDesktopDatabaseChecker checks for update-desktop-database.
func NewDesktopDatabaseChecker(tools exec.ToolChecker) *ToolChecker {
	return &ToolChecker{
		toolName:     "update-desktop-database",
		alternatives: []string{"update-desktop-database"},
		description:  "Refreshing application menu entries",
		severity:     doctor.SeverityWarning,
		installHint:  "Install with: apt-get install desktop-file-utils (Debian/Ubuntu) or dnf install desktop-file-utils (Fedora)",
		tools:        tools,
	}
}

// Name returns the name of the check
func (c *ToolChecker) Name() string {
	return c.toolName + " available"
}

// Category returns the category of the check
func (*ToolChecker) Category() doctor.Category {
	return doctor.CategoryTools
}

// Check performs the tool availability check
func (c *ToolChecker) Check(_ context.Context) doctor.CheckResult {
	foundTool := c.tools.FindTool(c.alternatives...)

	if foundTool == "" {
		details := []string{c.description + " will not work"}
		if c.installHint != "" {
			details = append(details, c.installHint)
		}

		return doctor.NewCheckResult(c.Name(), c.severity, doctor.StatusFail, c.toolName+" not found").
			WithDetails(details...)
	}

	message := "Found " + foundTool
	if foundTool != c.toolName {
		message = fmt.Sprintf("Found %s (alternative to %s)", foundTool, c.toolName)
	}

	return doctor.Pass(c.Name(), message)
}
