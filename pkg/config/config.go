// Package config provides configuration schema types for cursor-updater.
package config

// CurrentConfigVersion is the latest config schema version.
const CurrentConfigVersion = 1

// Config represents the root configuration for cursor-updater.
type Config struct {
	// Version is the config schema version. Defaults to 1 when omitted.
	Version int `json:"version,omitempty" koanf:"version" toml:"version,omitempty"`

	// Source selects and configures the release lookup.
	Source *SourceConfig `json:"source,omitempty" koanf:"source" toml:"source,omitempty"`

	// Install describes the installed application layout.
	Install *InstallConfig `json:"install,omitempty" koanf:"install" toml:"install,omitempty"`

	// Network bounds the HTTP requests.
	Network *NetworkConfig `json:"network,omitempty" koanf:"network" toml:"network,omitempty"`

	// Output controls terminal rendering.
	Output *OutputConfig `json:"output,omitempty" koanf:"output" toml:"output,omitempty"`
}

// GetSource returns the source config, creating it if it doesn't exist.
func (c *Config) GetSource() *SourceConfig {
	if c.Source == nil {
		c.Source = &SourceConfig{}
	}

	return c.Source
}

// GetInstall returns the install config, creating it if it doesn't exist.
func (c *Config) GetInstall() *InstallConfig {
	if c.Install == nil {
		c.Install = &InstallConfig{}
	}

	return c.Install
}

// GetNetwork returns the network config, creating it if it doesn't exist.
func (c *Config) GetNetwork() *NetworkConfig {
	if c.Network == nil {
		c.Network = &NetworkConfig{}
	}

	return c.Network
}

// GetOutput returns the output config, creating it if it doesn't exist.
func (c *Config) GetOutput() *OutputConfig {
	if c.Output == nil {
		c.Output = &OutputConfig{}
	}

	return c.Output
}

// OutputConfig controls terminal rendering.
type OutputConfig struct {
	// Color enables styled output. NO_COLOR and --no-color override it.
	// Default: true
	Color *bool `json:"color,omitempty" koanf:"color" toml:"color,omitempty"`
}

// IsColorEnabled returns whether styled output is enabled.
func (o *OutputConfig) IsColorEnabled() bool {
	if o == nil || o.Color == nil {
		return true
	}

	return *o.Color
}
