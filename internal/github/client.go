// Package github provides a thin GitHub releases client.
package github

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v84/github"

	execpkg "github.com/smykla-skalski/cursor-updater/internal/exec"
)

// ghAuthTimeout is the timeout for gh auth token command
const ghAuthTimeout = 5 * time.Second

var (
	// ErrRateLimitExceeded is returned when GitHub API rate limit is exceeded
	ErrRateLimitExceeded = errors.New("github API rate limit exceeded")
	// ErrRepositoryNotFound is returned when repository or release is not found
	ErrRepositoryNotFound = errors.New("repository not found")
)

// Asset is a file attached to a release.
type Asset struct {
	Name               string
	BrowserDownloadURL string
	Size               int64
}

// Release represents a GitHub release
type Release struct {
	TagName string
	Name    string
	HTMLURL string
	Assets  []Asset
}

// Client defines the interface for GitHub API operations
type Client interface {
	// GetLatestRelease retrieves the latest published release for a repository
	GetLatestRelease(ctx context.Context, owner, repo string) (*Release, error)
	// IsAuthenticated returns whether the client is authenticated
	IsAuthenticated() bool
}

// SDKClient implements Client using go-github SDK
type SDKClient struct {
	client        *github.Client
	authenticated bool
}

// Option configures an SDKClient.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	baseURL    string
	token      string
	runner     execpkg.CommandRunner
	tools      execpkg.ToolChecker
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests).
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = u }
}

// WithToken sets the token explicitly and skips environment lookup.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.token = token }
}

// WithCommandRunner sets the runner used for the `gh auth token` fallback.
func WithCommandRunner(r execpkg.CommandRunner, tools execpkg.ToolChecker) Option {
	return func(o *clientOptions) {
		o.runner = r
		o.tools = tools
	}
}

// getToken retrieves GitHub token from environment or gh CLI
func getToken(runner execpkg.CommandRunner, tools execpkg.ToolChecker) string {
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}

	if runner == nil || tools == nil || !tools.IsAvailable("gh") {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), ghAuthTimeout)
	defer cancel()

	result := runner.Run(ctx, "gh", "auth", "token")
	if result.Failed() {
		return ""
	}

	return strings.TrimSpace(result.Stdout)
}

// NewClient creates a GitHub client. Without WithToken the token is read from
// GH_TOKEN, GITHUB_TOKEN or `gh auth token`, in that order.
func NewClient(opts ...Option) (*SDKClient, error) {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	token := o.token
	if token == "" {
		token = getToken(o.runner, o.tools)
	}

	client := github.NewClient(o.httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}

		u, err := url.Parse(base)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing GitHub API URL %q", o.baseURL)
		}

		client.BaseURL = u
	}

	return &SDKClient{client: client, authenticated: token != ""}, nil
}

// IsAuthenticated returns whether the client is authenticated
func (c *SDKClient) IsAuthenticated() bool {
	return c.authenticated
}

// GetLatestRelease retrieves the latest release for a repository
func (c *SDKClient) GetLatestRelease(
	ctx context.Context,
	owner, repo string,
) (*Release, error) {
	release, resp, err := c.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, c.handleError(resp, err)
	}

	result := &Release{
		TagName: release.GetTagName(),
		Name:    release.GetName(),
		HTMLURL: release.GetHTMLURL(),
		Assets:  make([]Asset, 0, len(release.Assets)),
	}

	for _, a := range release.Assets {
		result.Assets = append(result.Assets, Asset{
			Name:               a.GetName(),
			BrowserDownloadURL: a.GetBrowserDownloadURL(),
			Size:               int64(a.GetSize()),
		})
	}

	return result, nil
}

// handleError converts GitHub API errors to our error types
func (*SDKClient) handleError(resp *github.Response, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return errors.WithSecondaryError(ErrRateLimitExceeded, err)
	}

	if resp == nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrRepositoryNotFound
	case http.StatusForbidden:
		if resp.Rate.Remaining == 0 {
			return ErrRateLimitExceeded
		}

		return err
	default:
		return err
	}
}

// IsRequestError reports whether err came from the API answering with an
// error status, as opposed to the transport failing.
func IsRequestError(err error) bool {
	var respErr *github.ErrorResponse

	return errors.Is(err, ErrRepositoryNotFound) ||
		errors.Is(err, ErrRateLimitExceeded) ||
		errors.As(err, &respErr)
}
