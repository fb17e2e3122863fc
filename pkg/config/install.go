package config

const (
	// DefaultInstallPath is the live installation directory.
	DefaultInstallPath = "/opt/cursor"

	// DefaultSymlinkPath is the launcher symlink on PATH.
	DefaultSymlinkPath = "/usr/local/bin/cursor"

	// DefaultLauncher is the bundle entry point relative to the install directory.
	DefaultLauncher = "AppRun"

	// DefaultDesktopFile is the desktop entry relative to the install directory.
	DefaultDesktopFile = "cursor.desktop"

	// DefaultSandboxHelper is the setuid sandbox helper relative to the bundle root.
	DefaultSandboxHelper = "usr/share/cursor/chrome-sandbox"
)

// InstallConfig describes the installed application layout.
type InstallConfig struct {
	// Path is the live installation directory.
	// Default: "/opt/cursor"
	Path string `json:"path,omitempty" koanf:"path" toml:"path,omitempty"`

	// Symlink is the launcher symlink created on PATH.
	// Default: "/usr/local/bin/cursor"
	Symlink string `json:"symlink,omitempty" koanf:"symlink" toml:"symlink,omitempty"`

	// Launcher is the bundle entry point the symlink points at, relative to Path.
	// Default: "AppRun"
	Launcher string `json:"launcher,omitempty" koanf:"launcher" toml:"launcher,omitempty"`

	// DesktopFile is the desktop entry carrying X-AppImage-Version, relative to Path.
	// Default: "cursor.desktop"
	DesktopFile string `json:"desktop_file,omitempty" koanf:"desktop_file" toml:"desktop_file,omitempty"`

	// SandboxHelper is the setuid helper inside the bundle, relative to its root.
	// Default: "usr/share/cursor/chrome-sandbox"
	SandboxHelper string `json:"sandbox_helper,omitempty" koanf:"sandbox_helper" toml:"sandbox_helper,omitempty"`

	// ApplicationsDir is refreshed with update-desktop-database after installing.
	// Default: "$XDG_DATA_HOME/applications"
	ApplicationsDir string `json:"applications_dir,omitempty" koanf:"applications_dir" toml:"applications_dir,omitempty"`

	// StagingDir holds extraction directories.
	// Default: "$XDG_CACHE_HOME/cursor-updater/staging"
	StagingDir string `json:"staging_dir,omitempty" koanf:"staging_dir" toml:"staging_dir,omitempty"`

	// DownloadDir holds downloaded bundles until installed.
	// Default: "$XDG_CACHE_HOME/cursor-updater/downloads"
	DownloadDir string `json:"download_dir,omitempty" koanf:"download_dir" toml:"download_dir,omitempty"`

	// Backup keeps the previous installation as a rollback generation.
	// Default: true
	Backup *bool `json:"backup,omitempty" koanf:"backup" toml:"backup,omitempty"`

	// Privilege is "auto", "sudo" or "direct".
	// Default: "auto"
	Privilege PrivilegeMode `json:"privilege,omitempty" koanf:"privilege" toml:"privilege,omitempty"`
}

// IsBackupEnabled returns whether the previous installation is kept.
func (i *InstallConfig) IsBackupEnabled() bool {
	if i == nil || i.Backup == nil {
		return true
	}

	return *i.Backup
}

// GetPath returns the install path, using default if not set.
func (i *InstallConfig) GetPath() string {
	return orDefault(i, func(i *InstallConfig) string { return i.Path }, DefaultInstallPath)
}

// GetSymlink returns the symlink path, using default if not set.
func (i *InstallConfig) GetSymlink() string {
	return orDefault(i, func(i *InstallConfig) string { return i.Symlink }, DefaultSymlinkPath)
}

// GetLauncher returns the launcher name, using default if not set.
func (i *InstallConfig) GetLauncher() string {
	return orDefault(i, func(i *InstallConfig) string { return i.Launcher }, DefaultLauncher)
}

// GetDesktopFile returns the desktop file name, using default if not set.
func (i *InstallConfig) GetDesktopFile() string {
	return orDefault(i, func(i *InstallConfig) string { return i.DesktopFile }, DefaultDesktopFile)
}

// GetSandboxHelper returns the sandbox helper path, using default if not set.
func (i *InstallConfig) GetSandboxHelper() string {
	return orDefault(i, func(i *InstallConfig) string { return i.SandboxHelper }, DefaultSandboxHelper)
}

// GetPrivilege returns the privilege mode, defaulting to PrivilegeAuto.
func (i *InstallConfig) GetPrivilege() PrivilegeMode {
	if i == nil || i.Privilege == "" {
		return PrivilegeAuto
	}

	return i.Privilege
}
