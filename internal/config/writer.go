package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/smykla-skalski/cursor-updater/internal/xdg"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

const (
	// ConfigFileMode is the file mode for configuration files (user read/write only).
	ConfigFileMode = 0o600

	// ConfigDirMode is the file mode for configuration directories (user rwx only).
	ConfigDirMode = 0o700
)

// ErrConfigExists is returned when writing would overwrite an existing file without force.
var ErrConfigExists = errors.New("configuration file already exists")

const fileHeader = "# cursor-updater configuration\n" +
	"# Environment variables (CURSOR_UPDATER_<SECTION>_<KEY>) and flags override these values.\n\n"

// Writer handles writing configuration to TOML files.
type Writer struct {
	resolver xdg.PathResolver
}

// NewWriter creates a new Writer with the real XDG paths.
func NewWriter() *Writer {
	return &Writer{resolver: xdg.DefaultResolver()}
}

// NewWriterWithResolver creates a new Writer with custom paths (for testing).
func NewWriterWithResolver(r xdg.PathResolver) *Writer {
	return &Writer{resolver: r}
}

// GlobalConfigPath returns the path to the global configuration file.
func (w *Writer) GlobalConfigPath() string {
	return w.resolver.GlobalConfigFile()
}

// WriteDefault writes the default configuration to path, or to the global
// config file when path is empty. An existing file is kept unless force is set.
func (w *Writer) WriteDefault(path string, force bool) (string, error) {
	if path == "" {
		path = w.GlobalConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return path, errors.Wrapf(ErrConfigExists, "%s", path)
	}

	return path, w.WriteFile(path, DefaultConfig(w.resolver))
}

// WriteFile writes the configuration to the given path atomically.
func (*Writer) WriteFile(path string, cfg *config.Config) error {
	if cfg == nil {
		return errors.Wrap(ErrInvalidConfig, "config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, ConfigDirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	var buf bytes.Buffer

	buf.WriteString(fileHeader)

	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)

	if err := encoder.Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config to TOML")
	}

	return atomicWriteFile(path, buf.Bytes())
}

// atomicWriteFile writes data to a temp file next to path and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return errors.Wrap(err, "failed to write temp file")
	}

	if err := tmp.Chmod(ConfigFileMode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return errors.Wrap(err, "failed to set temp file permissions")
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return errors.Wrap(err, "failed to close temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return errors.Wrap(err, "failed to rename temp file")
	}

	return nil
}
