package updater

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// NetworkError is a transport failure talking to a release endpoint or download host.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is an unexpected answer from the release metadata endpoint:
// a bad status, a malformed body or a release without a usable version.
type APIError struct {
	URL    string
	Status int
	Reason string
	Err    error
}

func (e *APIError) Error() string {
	msg := "release API error for " + e.URL
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}

	msg += ": " + e.Reason

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// DiskError is a local filesystem failure while writing an artifact.
type DiskError struct {
	Op   string
	Path string
	Err  error
}

func (e *DiskError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DiskError) Unwrap() error { return e.Err }

// IntegrityError means the downloaded artifact is empty, truncated or has the wrong digest.
type IntegrityError struct {
	Path   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s: %s", e.Path, e.Reason)
}

// Hint returns a short user-facing suggestion for err, or "" when there is none.
func Hint(err error) string {
	var (
		netErr       *NetworkError
		apiErr       *APIError
		diskErr      *DiskError
		integrityErr *IntegrityError
		probeErr     *ProbeError
	)

	switch {
	case errors.As(err, &netErr):
		return "check your network connection and try again"
	case errors.As(err, &apiErr):
		return "the release endpoint returned something unexpected; its format may have changed"
	case errors.As(err, &diskErr):
		return "check free space and permissions of the download directory"
	case errors.As(err, &integrityErr):
		return "the download was corrupted; run the update again"
	case errors.As(err, &probeErr):
		return "the installed launcher could not report its version; use --force to reinstall"
	default:
		return ""
	}
}
