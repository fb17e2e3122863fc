package xdg

import "path/filepath"

// PathResolver resolves the per-user paths cursor-updater reads and writes.
// The default implementation uses os.UserHomeDir() and XDG env vars.
// Use ResolverFor() when paths should be relative to a specific home directory.
type PathResolver interface {
	GlobalConfigFile() string
	ConfigDir() string
	ApplicationsDir() string
	StagingDir() string
	DownloadDir() string
}

// DefaultResolver returns a PathResolver using real XDG paths.
func DefaultResolver() PathResolver {
	return defaultResolver{}
}

type defaultResolver struct{}

func (defaultResolver) GlobalConfigFile() string { return GlobalConfigFile() }
func (defaultResolver) ConfigDir() string        { return ConfigDir() }
func (defaultResolver) ApplicationsDir() string  { return ApplicationsDir() }
func (defaultResolver) StagingDir() string       { return StagingDir() }
func (defaultResolver) DownloadDir() string      { return DownloadDir() }

// ResolverFor returns a PathResolver rooted at homeDir, ignoring XDG env vars.
func ResolverFor(homeDir string) PathResolver {
	return homeResolver{homeDir: homeDir}
}

type homeResolver struct {
	homeDir string
}

func (r homeResolver) ConfigDir() string {
	return filepath.Join(r.homeDir, ".config", appName)
}

func (r homeResolver) GlobalConfigFile() string {
	return filepath.Join(r.ConfigDir(), "config.toml")
}

func (r homeResolver) ApplicationsDir() string {
	return filepath.Join(r.homeDir, ".local", "share", "applications")
}

func (r homeResolver) cacheDir() string {
	return filepath.Join(r.homeDir, ".cache", appName)
}

func (r homeResolver) StagingDir() string {
	return filepath.Join(r.cacheDir(), "staging")
}

func (r homeResolver) DownloadDir() string {
	return filepath.Join(r.cacheDir(), "downloads")
}
