package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	execpkg "github.com/smykla-skalski/cursor-updater/internal/exec"
	"github.com/smykla-skalski/cursor-updater/internal/github"
)

const latestReleaseJSON = `{
  "tag_name": "v1.4.2",
  "name": "Cursor 1.4.2",
  "html_url": "https://github.com/acme/cursor/releases/tag/v1.4.2",
  "assets": [
    {"name": "Cursor-1.4.2-x86_64.AppImage", "browser_download_url": "https://dl.example/Cursor-1.4.2-x86_64.AppImage", "size": 1024},
    {"name": "Cursor-1.4.2-x86_64.AppImage.sha256", "browser_download_url": "https://dl.example/Cursor-1.4.2-x86_64.AppImage.sha256", "size": 90}
  ]
}`

var _ = Describe("SDKClient", func() {
	var (
		server *httptest.Server
		status int
		body   string
		auth   string
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = latestReleaseJSON
		auth = ""

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")

			if r.URL.Path != "/repos/acme/cursor/releases/latest" {
				w.WriteHeader(http.StatusNotFound)

				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))

		GinkgoT().Setenv("GH_TOKEN", "")
		GinkgoT().Setenv("GITHUB_TOKEN", "")
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(opts ...github.Option) *github.SDKClient {
		c, err := github.NewClient(append([]github.Option{github.WithBaseURL(server.URL)}, opts...)...)
		Expect(err).NotTo(HaveOccurred())

		return c
	}

	Describe("GetLatestRelease", func() {
		It("maps the release and its assets", func() {
			rel, err := newClient().GetLatestRelease(context.Background(), "acme", "cursor")
			Expect(err).NotTo(HaveOccurred())
			Expect(rel.TagName).To(Equal("v1.4.2"))
			Expect(rel.Name).To(Equal("Cursor 1.4.2"))
			Expect(rel.Assets).To(HaveLen(2))
			Expect(rel.Assets[0]).To(Equal(github.Asset{
				Name:               "Cursor-1.4.2-x86_64.AppImage",
				BrowserDownloadURL: "https://dl.example/Cursor-1.4.2-x86_64.AppImage",
				Size:               1024,
			}))
		})

		It("returns ErrRepositoryNotFound on 404", func() {
			_, err := newClient().GetLatestRelease(context.Background(), "acme", "missing")
			Expect(err).To(MatchError(github.ErrRepositoryNotFound))
			Expect(github.IsRequestError(err)).To(BeTrue())
		})

		It("passes through server errors", func() {
			status = http.StatusInternalServerError
			body = `{"message":"boom"}`

			_, err := newClient().GetLatestRelease(context.Background(), "acme", "cursor")
			Expect(err).To(HaveOccurred())
			Expect(github.IsRequestError(err)).To(BeTrue())
		})

		It("does not classify transport failures as request errors", func() {
			c := newClient()
			server.Close()

			_, err := c.GetLatestRelease(context.Background(), "acme", "cursor")
			Expect(err).To(HaveOccurred())
			Expect(github.IsRequestError(err)).To(BeFalse())
		})
	})

	Describe("authentication", func() {
		It("is anonymous without a token", func() {
			c := newClient()
			Expect(c.IsAuthenticated()).To(BeFalse())

			_, err := c.GetLatestRelease(context.Background(), "acme", "cursor")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth).To(BeEmpty())
		})

		It("uses an explicit token", func() {
			c := newClient(github.WithToken("explicit"))
			Expect(c.IsAuthenticated()).To(BeTrue())

			_, err := c.GetLatestRelease(context.Background(), "acme", "cursor")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth).To(Equal("Bearer explicit"))
		})

		It("prefers GH_TOKEN from the environment", func() {
			GinkgoT().Setenv("GH_TOKEN", "from-env")
			GinkgoT().Setenv("GITHUB_TOKEN", "other")

			c := newClient()

			_, err := c.GetLatestRelease(context.Background(), "acme", "cursor")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth).To(Equal("Bearer from-env"))
		})

		It("falls back to gh auth token", func() {
			ctrl := gomock.NewController(GinkgoT())
			runner := execpkg.NewMockCommandRunner(ctrl)
			tools := execpkg.NewMockToolChecker(ctrl)

			tools.EXPECT().IsAvailable("gh").Return(true)
			runner.EXPECT().Run(gomock.Any(), "gh", "auth", "token").
				Return(execpkg.CommandResult{Stdout: "gho_abc\n"})

			c := newClient(github.WithCommandRunner(runner, tools))
			Expect(c.IsAuthenticated()).To(BeTrue())
		})

		It("stays anonymous when gh fails", func() {
			ctrl := gomock.NewController(GinkgoT())
			runner := execpkg.NewMockCommandRunner(ctrl)
			tools := execpkg.NewMockToolChecker(ctrl)

			tools.EXPECT().IsAvailable("gh").Return(true)
			runner.EXPECT().Run(gomock.Any(), "gh", "auth", "token").
				Return(execpkg.CommandResult{ExitCode: 1, Err: errors.New("not logged in")})

			Expect(newClient(github.WithCommandRunner(runner, tools)).IsAuthenticated()).To(BeFalse())
		})
	})
})
