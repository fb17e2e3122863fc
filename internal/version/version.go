// Package version parses and orders the dotted version strings used by application releases.
//
// A version is a core of one or more numeric components ("1.2", "0.48.9", "1.2.3.4"),
// optionally followed by a pre-release ("-beta.1") and build metadata ("+linux").
// Pre-release precedence follows semantic versioning; build metadata never affects ordering.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
)

// extractPattern matches the first x.y.z token embedded in free text such as a download URL.
var extractPattern = regexp.MustCompile(`\b(\d+\.\d+\.\d+)\b`)

// ErrNoVersion is returned by Extract when the text carries no version token.
var ErrNoVersion = errors.New("no version found")

// ParseError reports a string that is not a valid version.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// Version is an immutable parsed version.
type Version struct {
	core       []uint64
	prerelease string
	build      string
}

// Parse parses s. A leading "v" is accepted.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "v"), "V")

	if trimmed == "" {
		return Version{}, &ParseError{Input: s, Reason: "empty"}
	}

	rest, build, hasBuild := strings.Cut(trimmed, "+")
	if hasBuild {
		if err := validateTag("0.0.0+" + build); build == "" || err != nil {
			return Version{}, &ParseError{Input: s, Reason: "malformed build metadata"}
		}
	}

	coreStr, pre, hasPre := strings.Cut(rest, "-")
	if hasPre {
		if err := validateTag("0.0.0-" + pre); pre == "" || err != nil {
			return Version{}, &ParseError{Input: s, Reason: "malformed pre-release"}
		}
	}

	parts := strings.Split(coreStr, ".")
	core := make([]uint64, 0, len(parts))

	for i, p := range parts {
		if p == "" {
			return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("empty component at position %d", i+1)}
		}

		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("non-numeric component %q", p)}
		}

		core = append(core, n)
	}

	return Version{
		core:       core,
		prerelease: pre,
		build:      build,
	}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// Extract finds the first x.y.z token in text and parses it.
func Extract(text string) (Version, error) {
	m := extractPattern.FindStringSubmatch(text)
	if m == nil {
		return Version{}, errors.Wrapf(ErrNoVersion, "in %q", text)
	}

	return Parse(m[1])
}

func validateTag(s string) error {
	_, err := semver.StrictNewVersion(s)

	return err
}

// Compare returns -1, 0 or 1 when a is lower than, equal to or greater than b.
func Compare(a, b Version) int {
	return a.Compare(b)
}

// Compare orders v against other.
func (v Version) Compare(other Version) int {
	shared := min(len(v.core), len(other.core))

	for i := range shared {
		switch {
		case v.core[i] < other.core[i]:
			return -1
		case v.core[i] > other.core[i]:
			return 1
		}
	}

	switch {
	case len(v.core) < len(other.core):
		return -1
	case len(v.core) > len(other.core):
		return 1
	}

	if v.prerelease == other.prerelease {
		return 0
	}

	return semver.New(0, 0, 0, v.prerelease, "").Compare(semver.New(0, 0, 0, other.prerelease, ""))
}

// LessThan reports whether v orders before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v and other have the same precedence.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsZero reports whether v is the zero value (never produced by Parse).
func (v Version) IsZero() bool {
	return len(v.core) == 0
}

// Prerelease returns the pre-release tag without the leading "-".
func (v Version) Prerelease() string {
	return v.prerelease
}

// String returns the canonical form without a "v" prefix.
func (v Version) String() string {
	if v.IsZero() {
		return ""
	}

	parts := make([]string, len(v.core))
	for i, n := range v.core {
		parts[i] = strconv.FormatUint(n, 10)
	}

	s := strings.Join(parts, ".")

	if v.prerelease != "" {
		s += "-" + v.prerelease
	}

	if v.build != "" {
		s += "+" + v.build
	}

	return s
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}
