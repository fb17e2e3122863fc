package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smykla-skalski/cursor-updater/internal/xdg"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

var (
	// ErrConfigNotFound is returned when an explicitly requested configuration file is missing.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidPermissions is returned when config file has insecure permissions.
	ErrInvalidPermissions = errors.New("config file has insecure permissions")
)

// EnvPrefix is the prefix of environment variables read by the loader.
const EnvPrefix = "CURSOR_UPDATER_"

// envSections maps env key prefixes to koanf paths, longest first so
// SOURCE_CURSOR_ wins over SOURCE_.
var envSections = []struct {
	prefix string
	path   string
}{
	{prefix: "source_cursor_", path: "source.cursor."},
	{prefix: "source_github_", path: "source.github."},
	{prefix: "source_", path: "source."},
	{prefix: "install_", path: "install."},
	{prefix: "network_", path: "network."},
	{prefix: "output_", path: "output."},
}

// KoanfLoader handles configuration loading from multiple sources using koanf.
// Precedence order (highest to lowest):
// 1. CLI Flags
// 2. Environment Variables (CURSOR_UPDATER_*)
// 3. Config file (--config, else $XDG_CONFIG_HOME/cursor-updater/config.toml)
// 4. Defaults
type KoanfLoader struct {
	k          *koanf.Koanf
	resolver   xdg.PathResolver
	configPath string
}

// NewKoanfLoader creates a new KoanfLoader with the real XDG paths.
func NewKoanfLoader() *KoanfLoader {
	return NewKoanfLoaderWithResolver(xdg.DefaultResolver())
}

// NewKoanfLoaderWithResolver creates a new KoanfLoader with custom paths (for testing).
func NewKoanfLoaderWithResolver(r xdg.PathResolver) *KoanfLoader {
	return &KoanfLoader{
		k:        koanf.New("."),
		resolver: r,
	}
}

// WithConfigFile makes the loader read path instead of the global config file.
// A missing explicit file is an error; a missing global file is not.
func (l *KoanfLoader) WithConfigFile(path string) *KoanfLoader {
	l.configPath = path

	return l
}

// Load loads configuration from all sources with precedence and validates it.
func (l *KoanfLoader) Load(flags map[string]any) (*config.Config, error) {
	cfg, err := l.LoadWithoutValidation(flags)
	if err != nil {
		return nil, err
	}

	validator := NewValidator()
	if err := validator.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// LoadWithoutValidation loads configuration without running validation.
// Defaults → TOML file → Env Vars → CLI Flags.
func (l *KoanfLoader) LoadWithoutValidation(flags map[string]any) (*config.Config, error) {
	// Reset koanf instance for fresh load
	l.k = koanf.New(".")

	if err := l.k.Load(confmap.Provider(defaultsToMap(l.resolver), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	path := l.ConfigPath()
	if err := l.loadTOMLFile(path); err != nil {
		switch {
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "failed to load config %s", path)
		case l.configPath != "":
			return nil, errors.Wrapf(ErrConfigNotFound, "%s", path)
		}
	}

	envOpt := env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envTransform,
	}

	if err := l.k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load env vars")
	}

	if len(flags) > 0 {
		if err := l.k.Load(confmap.Provider(flagsToConfig(flags), "."), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg config.Config

	dc := CustomDecoderConfig()
	dc.Result = &cfg

	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: dc,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := expandPaths(cfg.GetInstall()); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigPath returns the file the loader reads.
func (l *KoanfLoader) ConfigPath() string {
	if l.configPath != "" {
		return xdg.ExpandPathSilent(l.configPath)
	}

	return l.resolver.GlobalConfigFile()
}

// HasConfigFile reports whether the config file exists.
func (l *KoanfLoader) HasConfigFile() bool {
	info, err := os.Stat(l.ConfigPath())

	return err == nil && !info.IsDir()
}

// loadTOMLFile loads a TOML configuration file with security checks.
func (l *KoanfLoader) loadTOMLFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	// Security check: reject world-writable files
	if info.Mode().Perm()&0o002 != 0 {
		return errors.Wrapf(
			ErrInvalidPermissions,
			"%s is world-writable (mode: %s)",
			path,
			info.Mode().Perm(),
		)
	}

	return l.k.Load(file.Provider(path), tomlparser.Parser())
}

// envTransform maps CURSOR_UPDATER_INSTALL_DESKTOP_FILE to install.desktop_file.
// Keys outside the known sections are dropped.
func envTransform(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	if key == "version" {
		return key, value
	}

	for _, s := range envSections {
		if rest, ok := strings.CutPrefix(key, s.prefix); ok && rest != "" {
			return s.path + rest, value
		}
	}

	return "", nil
}

// flagsToConfig maps CLI flag names onto config paths.
func flagsToConfig(flags map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range flags {
		switch key {
		case "no-backup":
			if b, ok := value.(bool); ok && b {
				ensureMapKey(result, "install")["backup"] = false
			}

		case "privilege":
			if s, ok := value.(string); ok && s != "" {
				ensureMapKey(result, "install")["privilege"] = s
			}

		case "install-dir":
			if s, ok := value.(string); ok && s != "" {
				ensureMapKey(result, "install")["path"] = s
			}

		case "symlink":
			if s, ok := value.(string); ok && s != "" {
				ensureMapKey(result, "install")["symlink"] = s
			}

		case "source":
			if s, ok := value.(string); ok && s != "" {
				ensureMapKey(result, "source")["type"] = s
			}

		case "timeout":
			if s, ok := value.(string); ok && s != "" {
				ensureMapKey(result, "network")["timeout"] = s
			}

		case "no-color":
			if b, ok := value.(bool); ok && b {
				ensureMapKey(result, "output")["color"] = false
			}
		}
	}

	return result
}

func ensureMapKey(cfg map[string]any, key string) map[string]any {
	if _, ok := cfg[key]; !ok {
		cfg[key] = make(map[string]any)
	}

	result, _ := cfg[key].(map[string]any)

	return result
}

func expandPaths(inst *config.InstallConfig) error {
	for _, p := range []*string{
		&inst.Path,
		&inst.Symlink,
		&inst.ApplicationsDir,
		&inst.StagingDir,
		&inst.DownloadDir,
	} {
		expanded, err := xdg.ExpandPath(*p)
		if err != nil {
			return errors.Wrap(err, "expanding install paths")
		}

		*p = expanded
	}

	return nil
}
