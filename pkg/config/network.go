package config

import "time"

const (
	// DefaultTimeout bounds the release metadata request.
	DefaultTimeout = 15 * time.Second

	// DefaultProgressInterval is the minimum time between progress callbacks.
	DefaultProgressInterval = 200 * time.Millisecond
)

// NetworkConfig bounds the HTTP requests.
type NetworkConfig struct {
	// Timeout bounds the release metadata request.
	// Default: "15s"
	Timeout Duration `json:"timeout,omitempty" koanf:"timeout" toml:"timeout,omitempty"`

	// DownloadTimeout bounds the bundle download. Zero means no limit.
	// Default: "0s"
	DownloadTimeout Duration `json:"download_timeout,omitempty" koanf:"download_timeout" toml:"download_timeout,omitempty"`

	// ProgressInterval is the minimum time between download progress updates.
	// Default: "200ms"
	ProgressInterval Duration `json:"progress_interval,omitempty" koanf:"progress_interval" toml:"progress_interval,omitempty"`
}

// GetTimeout returns the metadata timeout, using default if not set.
func (n *NetworkConfig) GetTimeout() time.Duration {
	if n == nil || n.Timeout == 0 {
		return DefaultTimeout
	}

	return n.Timeout.ToDuration()
}

// GetDownloadTimeout returns the download timeout; zero means none.
func (n *NetworkConfig) GetDownloadTimeout() time.Duration {
	if n == nil {
		return 0
	}

	return n.DownloadTimeout.ToDuration()
}

// GetProgressInterval returns the progress throttle, using default if not set.
func (n *NetworkConfig) GetProgressInterval() time.Duration {
	if n == nil || n.ProgressInterval == 0 {
		return DefaultProgressInterval
	}

	return n.ProgressInterval.ToDuration()
}
