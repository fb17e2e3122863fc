package updater

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/cursor-updater/internal/github"
	"github.com/smykla-skalski/cursor-updater/internal/version"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

// maxMetadataBytes caps how much of a metadata response is read.
const maxMetadataBytes = 1 << 20

// Release describes the newest artifact published by a release source.
type Release struct {
	Version     version.Version
	DownloadURL string
	// SizeHint is the advertised artifact size, 0 when unknown.
	SizeHint int64
	// SHA256 is the expected hex digest, empty when the source publishes none.
	SHA256 string
	Source string
}

// ReleaseLocator fetches the latest release descriptor. Implementations make
// a single attempt; retrying is up to the caller.
type ReleaseLocator interface {
	Latest(ctx context.Context) (*Release, error)
}

// NewLocator builds the locator selected by cfg.
func NewLocator(cfg *config.SourceConfig, client *http.Client, gh github.Client) (ReleaseLocator, error) {
	switch cfg.GetType() {
	case config.SourceCursor:
		return NewCursorAPILocator(cfg.GetCursor(), client), nil
	case config.SourceGitHub:
		return NewGitHubLocator(cfg.GetGitHub(), gh, client), nil
	default:
		return nil, errors.Wrapf(config.ErrInvalidSourceType, "source %q", cfg.GetType())
	}
}

// cursorDownloadResponse is the body of the Cursor download API.
type cursorDownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	Version     string `json:"version"`
}

// CursorAPILocator queries the Cursor download API.
type CursorAPILocator struct {
	client       *http.Client
	endpoint     string
	platform     string
	releaseTrack string
	userAgent    string
}

// NewCursorAPILocator creates a locator for the Cursor download API.
func NewCursorAPILocator(cfg *config.CursorSourceConfig, client *http.Client) *CursorAPILocator {
	if client == nil {
		client = http.DefaultClient
	}

	return &CursorAPILocator{
		client:       client,
		endpoint:     cfg.GetEndpoint(),
		platform:     cfg.GetPlatform(),
		releaseTrack: cfg.GetReleaseTrack(),
		userAgent:    cfg.GetUserAgent(),
	}
}

// RequestURL returns the metadata URL including query parameters.
func (l *CursorAPILocator) RequestURL() (string, error) {
	u, err := url.Parse(l.endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "parsing endpoint %q", l.endpoint)
	}

	q := u.Query()
	q.Set("platform", l.platform)
	q.Set("releaseTrack", l.releaseTrack)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Latest implements ReleaseLocator.
//
//nolint:gosec // G107: endpoint comes from validated configuration
func (l *CursorAPILocator) Latest(ctx context.Context) (*Release, error) {
	reqURL, err := l.RequestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on response body

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{URL: reqURL, Status: resp.StatusCode, Reason: "unexpected status"}
	}

	var payload cursorDownloadResponse

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataBytes)).Decode(&payload); err != nil {
		return nil, &APIError{URL: reqURL, Status: resp.StatusCode, Reason: "malformed response body", Err: err}
	}

	if payload.DownloadURL == "" {
		return nil, &APIError{URL: reqURL, Status: resp.StatusCode, Reason: "downloadUrl missing from response"}
	}

	ver, err := cursorVersion(payload)
	if err != nil {
		return nil, &APIError{URL: reqURL, Status: resp.StatusCode, Reason: "no usable version", Err: err}
	}

	return &Release{
		Version:     ver,
		DownloadURL: payload.DownloadURL,
		Source:      string(config.SourceCursor),
	}, nil
}

// cursorVersion prefers the explicit version field and falls back to the
// version embedded in the download URL path. The host is never searched, so
// an address like 127.0.0.1 is not mistaken for a version.
func cursorVersion(p cursorDownloadResponse) (version.Version, error) {
	if p.Version != "" {
		return version.Parse(p.Version)
	}

	u, err := url.Parse(p.DownloadURL)
	if err != nil {
		return version.Version{}, errors.Wrap(err, "parsing downloadUrl")
	}

	if v, err := version.Extract(path.Base(u.Path)); err == nil {
		return v, nil
	}

	return version.Extract(u.Path)
}

// GitHubLocator reads the latest release of a GitHub repository and picks
// the first asset matching a glob.
type GitHubLocator struct {
	gh              github.Client
	http            *http.Client
	owner           string
	repo            string
	assetPattern    string
	checksumPattern string
}

// NewGitHubLocator creates a GitHub releases locator. The HTTP client is used
// to fetch checksum assets.
func NewGitHubLocator(cfg *config.GitHubSourceConfig, gh github.Client, client *http.Client) *GitHubLocator {
	if client == nil {
		client = http.DefaultClient
	}

	return &GitHubLocator{
		gh:              gh,
		http:            client,
		owner:           cfg.Owner,
		repo:            cfg.Repo,
		assetPattern:    cfg.GetAssetPattern(),
		checksumPattern: cfg.GetChecksumPattern(),
	}
}

// Latest implements ReleaseLocator.
func (l *GitHubLocator) Latest(ctx context.Context) (*Release, error) {
	repoURL := "github.com/" + l.owner + "/" + l.repo

	rel, err := l.gh.GetLatestRelease(ctx, l.owner, l.repo)
	if err != nil {
		if github.IsRequestError(err) {
			return nil, &APIError{URL: repoURL, Reason: "fetching latest release", Err: err}
		}

		return nil, &NetworkError{URL: repoURL, Err: err}
	}

	ver, err := version.Parse(rel.TagName)
	if err != nil {
		return nil, &APIError{URL: repoURL, Reason: "release tag is not a version", Err: err}
	}

	asset, ok := matchAsset(rel.Assets, l.assetPattern)
	if !ok {
		return nil, &APIError{
			URL:    repoURL,
			Reason: "no asset of release " + rel.TagName + " matches " + l.assetPattern,
		}
	}

	release := &Release{
		Version:     ver,
		DownloadURL: asset.BrowserDownloadURL,
		SizeHint:    asset.Size,
		Source:      string(config.SourceGitHub),
	}

	if sums, found := matchAsset(rel.Assets, l.checksumPattern); found {
		digest, sumErr := l.fetchChecksum(ctx, sums.BrowserDownloadURL, asset.Name)
		if sumErr != nil {
			return nil, sumErr
		}

		release.SHA256 = digest
	}

	return release, nil
}

// fetchChecksum downloads a checksum asset and returns the digest for name.
//
//nolint:gosec // G107: URL comes from the GitHub API response
func (l *GitHubLocator) fetchChecksum(ctx context.Context, sumsURL, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sumsURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return "", &NetworkError{URL: sumsURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on response body

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{URL: sumsURL, Status: resp.StatusCode, Reason: "unexpected status"}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return "", &NetworkError{URL: sumsURL, Err: err}
	}

	digest, ok := lookupChecksum(string(data), name)
	if !ok {
		return "", &APIError{URL: sumsURL, Reason: "no checksum listed for " + name}
	}

	return digest, nil
}

func matchAsset(assets []github.Asset, pattern string) (github.Asset, bool) {
	for _, a := range assets {
		if ok, err := doublestar.Match(pattern, a.Name); err == nil && ok {
			return a, true
		}
	}

	return github.Asset{}, false
}

// lookupChecksum finds the digest for name in either a SHA256SUMS listing or
// a single-digest .sha256 file.
func lookupChecksum(content, name string) (string, bool) {
	if digest, ok := ParseChecksums(content)[name]; ok {
		return digest, true
	}

	fields := strings.Fields(content)
	if len(fields) == 1 && isHexDigest(fields[0]) {
		return fields[0], true
	}

	return "", false
}
