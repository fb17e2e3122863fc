package updater_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/cursor-updater/internal/github"
	"github.com/smykla-skalski/cursor-updater/internal/updater"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

const appImageDigest = "4b2fc3a1a1b7d0a6cde7f7a6ec0b5b9e8e02c7e0f2bd2d8f54f8c3f1e0a9b7c1"

// fakeGitHub implements github.Client for testing.
type fakeGitHub struct {
	release *github.Release
	err     error
}

func (f *fakeGitHub) GetLatestRelease(_ context.Context, _, _ string) (*github.Release, error) {
	return f.release, f.err
}

func (*fakeGitHub) IsAuthenticated() bool {
	return false
}

var _ = Describe("CursorAPILocator", func() {
	var (
		server  *httptest.Server
		status  int
		body    string
		lastReq *http.Request
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = `{"downloadUrl":"https://downloads.cursor.com/production/abc/linux/x64/Cursor-1.4.2-x86_64.AppImage"}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newLocator := func() *updater.CursorAPILocator {
		return updater.NewCursorAPILocator(&config.CursorSourceConfig{Endpoint: server.URL + "/api/download"}, server.Client())
	}

	It("extracts the version from the download URL", func() {
		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Version.String()).To(Equal("1.4.2"))
		Expect(rel.DownloadURL).To(HaveSuffix("Cursor-1.4.2-x86_64.AppImage"))
		Expect(rel.Source).To(Equal("cursor"))
		Expect(rel.SizeHint).To(BeZero())
	})

	It("sends the platform, release track and headers", func() {
		_, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(lastReq.URL.Path).To(Equal("/api/download"))
		Expect(lastReq.URL.Query().Get("platform")).To(Equal("linux-x64"))
		Expect(lastReq.URL.Query().Get("releaseTrack")).To(Equal("latest"))
		Expect(lastReq.Header.Get("User-Agent")).To(Equal("Cursor-Version-Checker"))
		Expect(lastReq.Header.Get("Cache-Control")).To(Equal("no-cache"))
	})

	It("reads the version from the file name, not the host", func() {
		body = `{"downloadUrl":"http://127.0.0.1:8080/production/abc/Cursor-1.4.2-x86_64.AppImage"}`

		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Version.String()).To(Equal("1.4.2"))
	})

	It("falls back to a version directory in the path", func() {
		body = `{"downloadUrl":"http://10.0.0.1/releases/1.3.9/Cursor.AppImage"}`

		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Version.String()).To(Equal("1.3.9"))
	})

	It("prefers the explicit version field", func() {
		body = `{"downloadUrl":"https://dl.example/Cursor.AppImage","version":"1.5.0"}`

		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Version.String()).To(Equal("1.5.0"))
	})

	DescribeTable("API errors",
		func(code int, payload string) {
			status = code
			body = payload

			_, err := newLocator().Latest(context.Background())

			var apiErr *updater.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(updater.Hint(err)).To(ContainSubstring("format"))
		},
		Entry("server error", http.StatusInternalServerError, "oops"),
		Entry("malformed json", http.StatusOK, "{not json"),
		Entry("missing downloadUrl", http.StatusOK, `{"version":"1.0.0"}`),
		Entry("no version anywhere", http.StatusOK, `{"downloadUrl":"https://dl.example/Cursor.AppImage"}`),
		Entry("version only in the host", http.StatusOK, `{"downloadUrl":"http://127.0.0.1/latest/Cursor.AppImage"}`),
		Entry("invalid version field", http.StatusOK, `{"downloadUrl":"https://dl.example/x","version":"one"}`),
	)

	It("returns a network error when the endpoint is unreachable", func() {
		loc := newLocator()
		server.Close()

		_, err := loc.Latest(context.Background())

		var netErr *updater.NetworkError
		Expect(errors.As(err, &netErr)).To(BeTrue())
		Expect(updater.Hint(err)).To(ContainSubstring("network"))
	})
})

var _ = Describe("GitHubLocator", func() {
	var (
		gh        *fakeGitHub
		sums      *httptest.Server
		sumsBody  string
		sumsAsset github.Asset
		cfg       *config.GitHubSourceConfig
	)

	BeforeEach(func() {
		sumsBody = appImageDigest + "  Cursor-1.4.2-x86_64.AppImage\n"
		sums = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(sumsBody))
		}))

		sumsAsset = github.Asset{Name: "SHA256SUMS", BrowserDownloadURL: sums.URL + "/SHA256SUMS"}
		cfg = &config.GitHubSourceConfig{Owner: "acme", Repo: "cursor"}
		gh = &fakeGitHub{release: &github.Release{
			TagName: "v1.4.2",
			Assets: []github.Asset{
				{Name: "Cursor-1.4.2-x86_64.tar.gz", BrowserDownloadURL: "https://dl.example/tgz", Size: 10},
				{Name: "Cursor-1.4.2-x86_64.AppImage", BrowserDownloadURL: "https://dl.example/appimage", Size: 2048},
			},
		}}
	})

	AfterEach(func() {
		sums.Close()
	})

	newLocator := func() *updater.GitHubLocator {
		return updater.NewGitHubLocator(cfg, gh, sums.Client())
	}

	It("picks the first asset matching the pattern", func() {
		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Version.String()).To(Equal("1.4.2"))
		Expect(rel.DownloadURL).To(Equal("https://dl.example/appimage"))
		Expect(rel.SizeHint).To(Equal(int64(2048)))
		Expect(rel.SHA256).To(BeEmpty())
		Expect(rel.Source).To(Equal("github"))
	})

	It("reads the digest from a SHA256SUMS asset", func() {
		gh.release.Assets = append(gh.release.Assets, sumsAsset)

		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.SHA256).To(Equal(appImageDigest))
	})

	It("reads the digest from a single .sha256 asset", func() {
		sumsBody = appImageDigest + "\n"
		gh.release.Assets = append(gh.release.Assets, github.Asset{
			Name:               "Cursor-1.4.2-x86_64.AppImage.sha256",
			BrowserDownloadURL: sums.URL + "/one.sha256",
		})

		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.SHA256).To(Equal(appImageDigest))
	})

	It("fails when the checksum asset does not list the artifact", func() {
		sumsBody = appImageDigest + "  Other.AppImage\n"
		gh.release.Assets = append(gh.release.Assets, sumsAsset)

		_, err := newLocator().Latest(context.Background())

		var apiErr *updater.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
	})

	It("honours a custom asset pattern", func() {
		cfg.AssetPattern = "*.tar.gz"

		rel, err := newLocator().Latest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.DownloadURL).To(Equal("https://dl.example/tgz"))
	})

	It("fails when no asset matches", func() {
		cfg.AssetPattern = "*.deb"

		_, err := newLocator().Latest(context.Background())

		var apiErr *updater.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("*.deb"))
	})

	It("fails when the tag is not a version", func() {
		gh.release.TagName = "nightly"

		_, err := newLocator().Latest(context.Background())

		var apiErr *updater.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
	})

	It("maps API refusals to API errors", func() {
		gh.err = github.ErrRepositoryNotFound

		_, err := newLocator().Latest(context.Background())

		var apiErr *updater.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(errors.Is(err, github.ErrRepositoryNotFound)).To(BeTrue())
	})

	It("maps transport failures to network errors", func() {
		gh.err = errors.New("dial tcp: connection refused")

		_, err := newLocator().Latest(context.Background())

		var netErr *updater.NetworkError
		Expect(errors.As(err, &netErr)).To(BeTrue())
	})
})

var _ = Describe("NewLocator", func() {
	It("builds the configured locator", func() {
		loc, err := updater.NewLocator(&config.SourceConfig{}, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(loc).To(BeAssignableToTypeOf(&updater.CursorAPILocator{}))

		loc, err = updater.NewLocator(&config.SourceConfig{Type: config.SourceGitHub}, nil, &fakeGitHub{})
		Expect(err).NotTo(HaveOccurred())
		Expect(loc).To(BeAssignableToTypeOf(&updater.GitHubLocator{}))
	})

	It("rejects unknown source types", func() {
		_, err := updater.NewLocator(&config.SourceConfig{Type: "ftp"}, nil, nil)
		Expect(err).To(MatchError(config.ErrInvalidSourceType))
	})
})
