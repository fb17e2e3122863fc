package updater_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/cursor-updater/internal/updater"
)

func serve(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

var _ = Describe("Downloader", func() {
	var dest string

	BeforeEach(func() {
		dest = filepath.Join(GinkgoT().TempDir(), "downloads", "Cursor.AppImage")
	})

	Describe("Download", func() {
		It("downloads the file and makes it executable", func() {
			server := serve("file contents", http.StatusOK)
			defer server.Close()

			d := updater.NewDownloader(server.Client())

			got, err := d.Download(context.Background(), server.URL, dest, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(dest))

			data, err := os.ReadFile(dest)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("file contents"))

			info, err := os.Stat(dest)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm() & 0o100).NotTo(BeZero())
		})

		It("throttles progress callbacks and always reports the final size", func() {
			body := strings.Repeat("x", 256*1024)
			server := serve(body, http.StatusOK)
			defer server.Close()

			// A frozen clock means only the first read and the final report fire.
			frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			d := updater.NewDownloader(server.Client(), updater.WithClock(func() time.Time { return frozen }))

			var calls [][2]int64

			_, err := d.Download(context.Background(), server.URL, dest, func(received, total int64) {
				calls = append(calls, [2]int64{received, total})
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(calls).To(HaveLen(2))
			Expect(calls[1]).To(Equal([2]int64{int64(len(body)), int64(len(body))}))
		})

		It("reports on every read once the interval has passed", func() {
			body := strings.Repeat("y", 64*1024)
			server := serve(body, http.StatusOK)
			defer server.Close()

			var tick time.Time

			d := updater.NewDownloader(server.Client(),
				updater.WithProgressInterval(time.Millisecond),
				updater.WithClock(func() time.Time {
					tick = tick.Add(time.Second)

					return tick
				}))

			calls := 0

			_, err := d.Download(context.Background(), server.URL, dest, func(_, _ int64) { calls++ })
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(BeNumerically(">=", 2))
		})

		It("returns a network error on HTTP 404 and leaves no file", func() {
			server := serve("missing", http.StatusNotFound)
			defer server.Close()

			_, err := updater.NewDownloader(server.Client()).Download(context.Background(), server.URL, dest, nil)

			var netErr *updater.NetworkError
			Expect(errors.As(err, &netErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("404"))
			Expect(dest).NotTo(BeAnExistingFile())
		})

		It("returns an integrity error for a zero-byte body and removes the file", func() {
			server := serve("", http.StatusOK)
			defer server.Close()

			_, err := updater.NewDownloader(server.Client()).Download(context.Background(), server.URL, dest, nil)

			var integrityErr *updater.IntegrityError
			Expect(errors.As(err, &integrityErr)).To(BeTrue())
			Expect(integrityErr.Reason).To(ContainSubstring("empty"))
			Expect(dest).NotTo(BeAnExistingFile())
		})

		It("returns an integrity error when the size differs from the release", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Transfer-Encoding", "chunked")
				_, _ = w.Write([]byte("short"))
			}))
			defer server.Close()

			_, err := updater.NewDownloader(server.Client()).Download(
				context.Background(), server.URL, dest, nil, updater.WithExpectedSize(100))

			var integrityErr *updater.IntegrityError
			Expect(errors.As(err, &integrityErr)).To(BeTrue())
			Expect(integrityErr.Reason).To(ContainSubstring("size mismatch"))
			Expect(dest).NotTo(BeAnExistingFile())
		})

		It("verifies a SHA256 digest", func() {
			server := serve("bundle", http.StatusOK)
			defer server.Close()

			sum := sha256.Sum256([]byte("bundle"))

			_, err := updater.NewDownloader(server.Client()).Download(
				context.Background(), server.URL, dest, nil, updater.WithSHA256(hex.EncodeToString(sum[:])))
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns an integrity error on digest mismatch and removes the file", func() {
			server := serve("tampered", http.StatusOK)
			defer server.Close()

			_, err := updater.NewDownloader(server.Client()).Download(
				context.Background(), server.URL, dest, nil, updater.WithSHA256(appImageDigest))

			var integrityErr *updater.IntegrityError
			Expect(errors.As(err, &integrityErr)).To(BeTrue())
			Expect(dest).NotTo(BeAnExistingFile())
		})

		It("returns a disk error when the destination cannot be created", func() {
			server := serve("content", http.StatusOK)
			defer server.Close()

			blocker := filepath.Join(GinkgoT().TempDir(), "file")
			Expect(os.WriteFile(blocker, nil, 0o600)).To(Succeed())

			_, err := updater.NewDownloader(server.Client()).Download(
				context.Background(), server.URL, filepath.Join(blocker, "sub", "x.AppImage"), nil)

			var diskErr *updater.DiskError
			Expect(errors.As(err, &diskErr)).To(BeTrue())
		})

		It("returns an error on context cancellation", func() {
			server := serve("content", http.StatusOK)
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := updater.NewDownloader(server.Client()).Download(ctx, server.URL, dest, nil)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(dest).NotTo(BeAnExistingFile())
		})
	})

	DescribeTable("ArtifactName",
		func(url, want string) {
			Expect(updater.ArtifactName(url)).To(Equal(want))
		},
		Entry("plain", "https://dl.example/linux/Cursor-1.4.2-x86_64.AppImage", "Cursor-1.4.2-x86_64.AppImage"),
		Entry("query string", "https://dl.example/Cursor.AppImage?sig=abc", "Cursor.AppImage"),
		Entry("no path", "https://dl.example", "cursor.AppImage"),
		Entry("trailing slash", "https://dl.example/", "cursor.AppImage"),
	)
})
