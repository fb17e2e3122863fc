package config

import (
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNegativeDuration is returned when a negative duration is provided.
	ErrNegativeDuration = errors.New("duration must be non-negative")

	// ErrInvalidSourceType is returned for an unknown release source.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrInvalidPrivilegeMode is returned for an unknown privilege mode.
	ErrInvalidPrivilegeMode = errors.New("invalid privilege mode")
)

// SourceType selects where the latest release is looked up.
type SourceType string

const (
	// SourceCursor queries the Cursor download API.
	SourceCursor SourceType = "cursor"

	// SourceGitHub queries the latest release of a GitHub repository.
	SourceGitHub SourceType = "github"
)

// SourceTypes lists every accepted SourceType.
var SourceTypes = []SourceType{SourceCursor, SourceGitHub}

// ParseSourceType parses a string into a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	for _, t := range SourceTypes {
		if string(t) == s {
			return t, nil
		}
	}

	return "", errors.Wrapf(ErrInvalidSourceType, "%q, must be one of %v", s, SourceTypes)
}

// PrivilegeMode selects how privileged filesystem operations are performed.
type PrivilegeMode string

const (
	// PrivilegeAuto uses direct syscalls when running as root, sudo otherwise.
	PrivilegeAuto PrivilegeMode = "auto"

	// PrivilegeSudo always runs privileged operations through sudo.
	PrivilegeSudo PrivilegeMode = "sudo"

	// PrivilegeDirect always uses direct syscalls. Installing a sandbox helper needs root.
	PrivilegeDirect PrivilegeMode = "direct"
)

// PrivilegeModes lists every accepted PrivilegeMode.
var PrivilegeModes = []PrivilegeMode{PrivilegeAuto, PrivilegeSudo, PrivilegeDirect}

// ParsePrivilegeMode parses a string into a PrivilegeMode.
func ParsePrivilegeMode(s string) (PrivilegeMode, error) {
	for _, m := range PrivilegeModes {
		if string(m) == s {
			return m, nil
		}
	}

	return "", errors.Wrapf(ErrInvalidPrivilegeMode, "%q, must be one of %v", s, PrivilegeModes)
}

// Duration wraps time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(err, "invalid duration")
	}

	if dur < 0 {
		return errors.Wrapf(ErrNegativeDuration, "got %s", dur)
	}

	*d = Duration(dur)

	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML serialization.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// ToDuration converts Duration to time.Duration.
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
