// Package config provides internal configuration loading and processing.
package config

import (
	"github.com/smykla-skalski/cursor-updater/internal/xdg"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

// DefaultConfig returns a Config with all default values populated, resolving
// per-user directories through r.
func DefaultConfig(r xdg.PathResolver) *config.Config {
	backup := true
	color := true

	return &config.Config{
		Version: config.CurrentConfigVersion,
		Source: &config.SourceConfig{
			Type: config.SourceCursor,
			Cursor: &config.CursorSourceConfig{
				Endpoint:     config.DefaultCursorEndpoint,
				Platform:     config.DefaultCursorPlatform,
				ReleaseTrack: config.DefaultCursorReleaseTrack,
				UserAgent:    config.DefaultUserAgent,
			},
			GitHub: &config.GitHubSourceConfig{
				AssetPattern:    config.DefaultAssetPattern,
				ChecksumPattern: config.DefaultChecksumPattern,
			},
		},
		Install: &config.InstallConfig{
			Path:            config.DefaultInstallPath,
			Symlink:         config.DefaultSymlinkPath,
			Launcher:        config.DefaultLauncher,
			DesktopFile:     config.DefaultDesktopFile,
			SandboxHelper:   config.DefaultSandboxHelper,
			ApplicationsDir: r.ApplicationsDir(),
			StagingDir:      r.StagingDir(),
			DownloadDir:     r.DownloadDir(),
			Backup:          &backup,
			Privilege:       config.PrivilegeAuto,
		},
		Network: &config.NetworkConfig{
			Timeout:          config.Duration(config.DefaultTimeout),
			ProgressInterval: config.Duration(config.DefaultProgressInterval),
		},
		Output: &config.OutputConfig{Color: &color},
	}
}

// defaultsToMap renders DefaultConfig as the koanf base layer.
func defaultsToMap(r xdg.PathResolver) map[string]any {
	cfg := DefaultConfig(r)

	return map[string]any{
		"version": cfg.Version,
		"source": map[string]any{
			"type": string(cfg.Source.Type),
			"cursor": map[string]any{
				"endpoint":      cfg.Source.Cursor.Endpoint,
				"platform":      cfg.Source.Cursor.Platform,
				"release_track": cfg.Source.Cursor.ReleaseTrack,
				"user_agent":    cfg.Source.Cursor.UserAgent,
			},
			"github": map[string]any{
				"asset_pattern":    cfg.Source.GitHub.AssetPattern,
				"checksum_pattern": cfg.Source.GitHub.ChecksumPattern,
			},
		},
		"install": map[string]any{
			"path":             cfg.Install.Path,
			"symlink":          cfg.Install.Symlink,
			"launcher":         cfg.Install.Launcher,
			"desktop_file":     cfg.Install.DesktopFile,
			"sandbox_helper":   cfg.Install.SandboxHelper,
			"applications_dir": cfg.Install.ApplicationsDir,
			"staging_dir":      cfg.Install.StagingDir,
			"download_dir":     cfg.Install.DownloadDir,
			"backup":           true,
			"privilege":        string(cfg.Install.Privilege),
		},
		"network": map[string]any{
			"timeout":           cfg.Network.Timeout.String(),
			"download_timeout":  "0s",
			"progress_interval": cfg.Network.ProgressInterval.String(),
		},
		"output": map[string]any{
			"color": true,
		},
	}
}
