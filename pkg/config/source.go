package config

const (
	// DefaultCursorEndpoint is the Cursor download API.
	DefaultCursorEndpoint = "https://www.cursor.com/api/download"

	// DefaultCursorPlatform is the platform query parameter.
	DefaultCursorPlatform = "linux-x64"

	// DefaultCursorReleaseTrack is the releaseTrack query parameter.
	DefaultCursorReleaseTrack = "latest"

	// DefaultUserAgent is sent with every metadata request.
	DefaultUserAgent = "Cursor-Version-Checker"

	// DefaultAssetPattern selects the bundle among GitHub release assets.
	DefaultAssetPattern = "*.AppImage"

	// DefaultChecksumPattern selects the checksum asset among GitHub release assets.
	DefaultChecksumPattern = "{*.sha256,SHA256SUMS}"
)

// SourceConfig selects and configures the release lookup.
type SourceConfig struct {
	// Type is "cursor" (download API) or "github" (repository releases).
	// Default: "cursor"
	Type SourceType `json:"type,omitempty" koanf:"type" toml:"type,omitempty"`

	// Cursor configures the download API lookup.
	Cursor *CursorSourceConfig `json:"cursor,omitempty" koanf:"cursor" toml:"cursor,omitempty"`

	// GitHub configures the release lookup.
	GitHub *GitHubSourceConfig `json:"github,omitempty" koanf:"github" toml:"github,omitempty"`
}

// CursorSourceConfig configures the Cursor download API lookup.
type CursorSourceConfig struct {
	// Endpoint is the API URL.
	// Default: "https://www.cursor.com/api/download"
	Endpoint string `json:"endpoint,omitempty" koanf:"endpoint" toml:"endpoint,omitempty"`

	// Platform is sent as the platform query parameter.
	// Default: "linux-x64"
	Platform string `json:"platform,omitempty" koanf:"platform" toml:"platform,omitempty"`

	// ReleaseTrack is sent as the releaseTrack query parameter.
	// Default: "latest"
	ReleaseTrack string `json:"release_track,omitempty" koanf:"release_track" toml:"release_track,omitempty"`

	// UserAgent is sent with the request.
	// Default: "Cursor-Version-Checker"
	UserAgent string `json:"user_agent,omitempty" koanf:"user_agent" toml:"user_agent,omitempty"`
}

// GitHubSourceConfig configures the GitHub release lookup.
type GitHubSourceConfig struct {
	// Owner is the repository owner.
	Owner string `json:"owner,omitempty" koanf:"owner" toml:"owner,omitempty"`

	// Repo is the repository name.
	Repo string `json:"repo,omitempty" koanf:"repo" toml:"repo,omitempty"`

	// AssetPattern is a doublestar glob matched against asset names.
	// Default: "*.AppImage"
	AssetPattern string `json:"asset_pattern,omitempty" koanf:"asset_pattern" toml:"asset_pattern,omitempty"`

	// ChecksumPattern is a doublestar glob selecting the optional checksum asset.
	// Default: "{*.sha256,SHA256SUMS}"
	ChecksumPattern string `json:"checksum_pattern,omitempty" koanf:"checksum_pattern" toml:"checksum_pattern,omitempty"`
}

// GetType returns the source type, defaulting to SourceCursor.
func (s *SourceConfig) GetType() SourceType {
	if s == nil || s.Type == "" {
		return SourceCursor
	}

	return s.Type
}

// GetCursor returns the Cursor source config, creating it if it doesn't exist.
func (s *SourceConfig) GetCursor() *CursorSourceConfig {
	if s.Cursor == nil {
		s.Cursor = &CursorSourceConfig{}
	}

	return s.Cursor
}

// GetGitHub returns the GitHub source config, creating it if it doesn't exist.
func (s *SourceConfig) GetGitHub() *GitHubSourceConfig {
	if s.GitHub == nil {
		s.GitHub = &GitHubSourceConfig{}
	}

	return s.GitHub
}

// GetEndpoint returns the endpoint, using default if not set.
func (c *CursorSourceConfig) GetEndpoint() string {
	return orDefault(c, func(c *CursorSourceConfig) string { return c.Endpoint }, DefaultCursorEndpoint)
}

// GetPlatform returns the platform, using default if not set.
func (c *CursorSourceConfig) GetPlatform() string {
	return orDefault(c, func(c *CursorSourceConfig) string { return c.Platform }, DefaultCursorPlatform)
}

// GetReleaseTrack returns the release track, using default if not set.
func (c *CursorSourceConfig) GetReleaseTrack() string {
	return orDefault(
		c,
		func(c *CursorSourceConfig) string { return c.ReleaseTrack },
		DefaultCursorReleaseTrack,
	)
}

// GetUserAgent returns the user agent, using default if not set.
func (c *CursorSourceConfig) GetUserAgent() string {
	return orDefault(c, func(c *CursorSourceConfig) string { return c.UserAgent }, DefaultUserAgent)
}

// GetAssetPattern returns the asset glob, using default if not set.
func (g *GitHubSourceConfig) GetAssetPattern() string {
	return orDefault(g, func(g *GitHubSourceConfig) string { return g.AssetPattern }, DefaultAssetPattern)
}

// GetChecksumPattern returns the checksum glob, using default if not set.
func (g *GitHubSourceConfig) GetChecksumPattern() string {
	return orDefault(
		g,
		func(g *GitHubSourceConfig) string { return g.ChecksumPattern },
		DefaultChecksumPattern,
	)
}

func orDefault[T any](c *T, get func(*T) string, def string) string {
	if c == nil {
		return def
	}

	if v := get(c); v != "" {
		return v
	}

	return def
}
