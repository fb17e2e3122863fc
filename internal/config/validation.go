package config

import (
	"maps"
	"net/url"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyValue is returned when a required value is empty.
	ErrEmptyValue = errors.New("empty value not allowed")

	// ErrInvalidOption is returned when an option value is invalid.
	ErrInvalidOption = errors.New("invalid option value")

	// ErrInvalidPath is returned when a path is not absolute or otherwise unusable.
	ErrInvalidPath = errors.New("invalid path")
)

// Validator validates configuration semantics.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
// Returns an error describing all validation failures.
func (v *Validator) Validate(cfg *config.Config) error {
	if cfg == nil {
		return errors.WithMessage(ErrInvalidConfig, "config is nil")
	}

	var validationErrors []error

	if cfg.Version > config.CurrentConfigVersion {
		validationErrors = append(validationErrors, errors.Wrapf(
			ErrInvalidOption,
			"version %d is newer than supported version %d",
			cfg.Version,
			config.CurrentConfigVersion,
		))
	}

	validationErrors = append(validationErrors, v.validateSource(cfg.Source)...)
	validationErrors = append(validationErrors, v.validateInstall(cfg.Install)...)
	validationErrors = append(validationErrors, v.validateNetwork(cfg.Network)...)

	if len(validationErrors) > 0 {
		return errors.WithSecondaryError(
			errors.Wrapf(
				ErrInvalidConfig,
				"validation failed with %d error(s)",
				len(validationErrors),
			),
			combineErrors(validationErrors),
		)
	}

	return nil
}

func (*Validator) validateSource(src *config.SourceConfig) []error {
	if src == nil {
		return nil
	}

	var errs []error

	switch src.GetType() {
	case config.SourceCursor:
		endpoint := src.GetCursor().GetEndpoint()

		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, errors.Wrapf(
				ErrInvalidOption,
				"source.cursor.endpoint must be an absolute http(s) URL, got %q",
				endpoint,
			))
		}

	case config.SourceGitHub:
		gh := src.GetGitHub()

		if gh.Owner == "" || gh.Repo == "" {
			errs = append(errs, errors.Wrap(
				ErrEmptyValue,
				"source.github.owner and source.github.repo are required for the github source",
			))
		}

		for _, opt := range []struct{ name, pattern string }{
			{"asset_pattern", gh.GetAssetPattern()},
			{"checksum_pattern", gh.GetChecksumPattern()},
		} {
			if !doublestar.ValidatePattern(opt.pattern) {
				errs = append(errs, errors.Wrapf(
					ErrInvalidOption,
					"source.github.%s is not a valid glob: %q",
					opt.name,
					opt.pattern,
				))
			}
		}

	default:
		errs = append(errs, errors.Wrapf(
			config.ErrInvalidSourceType,
			"source.type must be one of %v, got %q",
			config.SourceTypes,
			src.Type,
		))
	}

	return errs
}

func (*Validator) validateInstall(inst *config.InstallConfig) []error {
	if inst == nil {
		return nil
	}

	var errs []error

	absolute := map[string]string{
		"install.path":    inst.GetPath(),
		"install.symlink": inst.GetSymlink(),
	}

	for _, opt := range []struct{ name, value string }{
		{"install.applications_dir", inst.ApplicationsDir},
		{"install.staging_dir", inst.StagingDir},
		{"install.download_dir", inst.DownloadDir},
	} {
		if opt.value != "" {
			absolute[opt.name] = opt.value
		}
	}

	for _, name := range slices.Sorted(maps.Keys(absolute)) {
		if !filepath.IsAbs(absolute[name]) {
			errs = append(errs, errors.Wrapf(ErrInvalidPath, "%s must be absolute, got %q", name, absolute[name]))
		}
	}

	if filepath.Clean(inst.GetPath()) == "/" {
		errs = append(errs, errors.Wrap(ErrInvalidPath, "install.path must not be the filesystem root"))
	}

	for _, opt := range []struct{ name, value string }{
		{"install.launcher", inst.GetLauncher()},
		{"install.desktop_file", inst.GetDesktopFile()},
		{"install.sandbox_helper", inst.GetSandboxHelper()},
	} {
		if filepath.IsAbs(opt.value) || !filepath.IsLocal(opt.value) {
			errs = append(errs, errors.Wrapf(
				ErrInvalidPath,
				"%s must be relative to the bundle, got %q",
				opt.name,
				opt.value,
			))
		}
	}

	if !slices.Contains(config.PrivilegeModes, inst.GetPrivilege()) {
		errs = append(errs, errors.Wrapf(
			config.ErrInvalidPrivilegeMode,
			"install.privilege must be one of %v, got %q",
			config.PrivilegeModes,
			inst.Privilege,
		))
	}

	return errs
}

func (*Validator) validateNetwork(n *config.NetworkConfig) []error {
	if n == nil {
		return nil
	}

	// Negative values are rejected by Duration itself; zero falls back to defaults.
	if n.GetTimeout() > n.GetDownloadTimeout() && n.GetDownloadTimeout() != 0 {
		return []error{errors.Wrapf(
			ErrInvalidOption,
			"network.download_timeout (%s) must not be shorter than network.timeout (%s)",
			n.GetDownloadTimeout(),
			n.GetTimeout(),
		)}
	}

	return nil
}

// combineErrors combines multiple errors into a single error.
func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return errors.Join(errs...)
}
