package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultProgressInterval bounds how often the progress callback fires.
	DefaultProgressInterval = 200 * time.Millisecond

	artifactFileMode = 0o600
	downloadDirMode  = 0o700
)

// ProgressFunc is called during download with bytes received and total bytes.
// Total is -1 if the server doesn't send Content-Length.
type ProgressFunc func(received, total int64)

// Downloader streams release artifacts to disk.
type Downloader struct {
	client   *http.Client
	interval time.Duration
	now      func() time.Time
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithProgressInterval sets the minimum time between progress callbacks.
func WithProgressInterval(d time.Duration) DownloaderOption {
	return func(dl *Downloader) { dl.interval = d }
}

// WithClock replaces the time source used for progress throttling.
func WithClock(now func() time.Time) DownloaderOption {
	return func(dl *Downloader) { dl.now = now }
}

// NewDownloader creates a new Downloader with the given HTTP client.
func NewDownloader(client *http.Client, opts ...DownloaderOption) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}

	d := &Downloader{client: client, interval: DefaultProgressInterval, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// DownloadOption adds a verification to a single download.
type DownloadOption func(*downloadChecks)

type downloadChecks struct {
	sha256 string
	size   int64
}

// WithSHA256 verifies the artifact against a hex digest.
func WithSHA256(digest string) DownloadOption {
	return func(c *downloadChecks) { c.sha256 = digest }
}

// WithExpectedSize verifies the artifact size when the server omits Content-Length.
func WithExpectedSize(n int64) DownloadOption {
	return func(c *downloadChecks) { c.size = n }
}

// ArtifactName derives a local file name from a download URL.
func ArtifactName(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}

	if name == "" || name == "." || name == "/" {
		return "cursor.AppImage"
	}

	return name
}

// Download fetches rawURL into destPath and returns destPath. The file is left
// executable by its owner. On any failure destPath is removed.
//
//nolint:gosec // G304/G107: URL and destPath are constructed internally by the updater
func (d *Downloader) Download(
	ctx context.Context,
	rawURL, destPath string,
	progress ProgressFunc,
	opts ...DownloadOption,
) (_ string, err error) {
	checks := &downloadChecks{}
	for _, opt := range opts {
		opt(checks)
	}

	if mkErr := os.MkdirAll(filepath.Dir(destPath), downloadDirMode); mkErr != nil {
		return "", &DiskError{Op: "creating directory for", Path: destPath, Err: mkErr}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on response body

	if resp.StatusCode != http.StatusOK {
		return "", &NetworkError{URL: rawURL, Err: errors.Newf("download failed: HTTP %d", resp.StatusCode)}
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, artifactFileMode)
	if err != nil {
		return "", &DiskError{Op: "creating", Path: destPath, Err: err}
	}

	defer func() {
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()

	total := resp.ContentLength
	if total <= 0 && checks.size > 0 {
		total = checks.size
	}

	hasher := sha256.New()
	reader := &progressReader{
		reader:   resp.Body,
		total:    total,
		callback: progress,
		interval: d.interval,
		now:      d.now,
	}

	written, copyErr := io.Copy(&diskWriter{w: out, h: hasher, path: destPath}, reader)
	closeErr := out.Close()

	if copyErr != nil {
		var diskErr *DiskError
		if errors.As(copyErr, &diskErr) {
			return "", diskErr
		}

		return "", &NetworkError{URL: rawURL, Err: copyErr}
	}

	if closeErr != nil {
		return "", &DiskError{Op: "closing", Path: destPath, Err: closeErr}
	}

	reader.finish()

	if err = verifyArtifact(destPath, written, total, hasher, checks); err != nil {
		return "", err
	}

	if chErr := os.Chmod(destPath, artifactFileMode|0o100); chErr != nil {
		return "", &DiskError{Op: "making executable", Path: destPath, Err: chErr}
	}

	return destPath, nil
}

func verifyArtifact(path string, written, total int64, h hash.Hash, checks *downloadChecks) error {
	if written == 0 {
		return &IntegrityError{Path: path, Reason: "downloaded file is empty"}
	}

	if total > 0 && written != total {
		return &IntegrityError{
			Path:   path,
			Reason: fmt.Sprintf("size mismatch: expected %d bytes, got %d", total, written),
		}
	}

	if checks.sha256 != "" {
		return compareDigest(path, hex.EncodeToString(h.Sum(nil)), checks.sha256)
	}

	return nil
}

// diskWriter tees into the hash and tags write failures as disk errors so
// they can be told apart from read failures on the response body.
type diskWriter struct {
	w    io.Writer
	h    hash.Hash
	path string
}

func (d *diskWriter) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	if err != nil {
		return n, &DiskError{Op: "writing", Path: d.path, Err: err}
	}

	_, _ = d.h.Write(p[:n])

	return n, nil
}

// progressReader wraps an io.Reader and reports progress at most once per interval.
type progressReader struct {
	reader   io.Reader
	total    int64
	received int64
	callback ProgressFunc
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.received += int64(n)

	if r.callback != nil && n > 0 {
		if t := r.now(); r.last.IsZero() || t.Sub(r.last) >= r.interval {
			r.last = t
			r.callback(r.received, r.total)
		}
	}

	return n, err
}

// finish emits the final progress report.
func (r *progressReader) finish() {
	if r.callback != nil {
		r.callback(r.received, r.total)
	}
}
