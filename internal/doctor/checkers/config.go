package checkers

import (
	"context"
	"os"

	"github.com/smykla-skalski/cursor-updater/internal/doctor"
)

// ConfigChecker validates the configuration file.
type ConfigChecker struct {
	path string
	load func() error
}

// NewConfigChecker creates a ConfigChecker. load loads and validates the
// configuration from path.
func NewConfigChecker(path string, load func() error) *ConfigChecker {
	return &ConfigChecker{path: path, load: load}
}

// Name returns the name of the check
func (*ConfigChecker) Name() string { return "Configuration" }

// Category returns the category of the check
func (*ConfigChecker) Category() doctor.Category { return doctor.CategoryConfig }

// Check loads the configuration.
func (c *ConfigChecker) Check(_ context.Context) doctor.CheckResult {
	if err := c.load(); err != nil {
		return doctor.FailError(c.Name(), "Configuration is invalid").
			WithDetails(err.Error(), "Fix "+c.path+" or run: cursor-updater config init --force")
	}

	if _, err := os.Stat(c.path); err != nil {
		return doctor.Pass(c.Name(), "Using defaults, no file at "+c.path)
	}

	return doctor.Pass(c.Name(), c.path)
}
