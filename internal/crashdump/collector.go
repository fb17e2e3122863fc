// Package crashdump records diagnostic reports for panics.
package crashdump

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"runtime/debug"
	"time"
)

const (
	// shortIDLength is the length of the short ID suffix.
	shortIDLength = 8

	// panicNilStr is the string representation of panic(nil).
	panicNilStr = "panic(nil)"
)

// CrashInfo is the content of one crash report.
type CrashInfo struct {
	ID         string       `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	PanicValue string       `json:"panic_value"`
	StackTrace string       `json:"stack_trace"`
	Runtime    RuntimeInfo  `json:"runtime"`
	Run        *RunInfo     `json:"run,omitempty"`
	Metadata   DumpMetadata `json:"metadata"`
}

// RuntimeInfo describes the Go runtime at crash time.
type RuntimeInfo struct {
	GOOS         string `json:"goos"`
	GOARCH       string `json:"goarch"`
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
}

// RunInfo is what the updater was doing when it crashed.
type RunInfo struct {
	Command     string `json:"command"`
	Step        string `json:"step,omitempty"`
	InstallPath string `json:"install_path,omitempty"`
	Source      string `json:"source,omitempty"`
	CheckOnly   bool   `json:"check_only,omitempty"`
	Force       bool   `json:"force,omitempty"`
	NoBackup    bool   `json:"no_backup,omitempty"`
}

// DumpMetadata identifies the build and machine.
type DumpMetadata struct {
	Version    string `json:"version"`
	User       string `json:"user,omitempty"`
	Hostname   string `json:"hostname,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"`
}

// formatPanicValue converts a recovered panic value to a string representation.
func formatPanicValue(v any) string {
	if v == nil {
		return panicNilStr
	}

	// panic(nil) arrives as *runtime.PanicNilError
	type panicNilError interface {
		error
		RuntimeError()
	}

	if _, ok := v.(panicNilError); ok {
		return panicNilStr
	}

	if err, ok := v.(error); ok {
		return err.Error()
	}

	return fmt.Sprintf("%v", v)
}

// Collector builds crash reports.
type Collector struct {
	version string
	now     func() time.Time
}

// NewCollector creates a collector for the given build version.
func NewCollector(version string) *Collector {
	return &Collector{version: version, now: time.Now}
}

// Collect gathers crash information from a recovered panic. It must be called
// from the deferred recover so the stack still shows the panicking frames.
func (c *Collector) Collect(recovered any, run *RunInfo) *CrashInfo {
	now := c.now()
	panicValue := formatPanicValue(recovered)

	return &CrashInfo{
		ID:         generateCrashID(now, panicValue),
		Timestamp:  now,
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Runtime: RuntimeInfo{
			GOOS:         runtime.GOOS,
			GOARCH:       runtime.GOARCH,
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
		},
		Run:      run,
		Metadata: c.collectMetadata(),
	}
}

func (c *Collector) collectMetadata() DumpMetadata {
	meta := DumpMetadata{Version: c.version}

	if u, err := user.Current(); err == nil {
		meta.User = u.Username
	}

	if hostname, err := os.Hostname(); err == nil {
		meta.Hostname = hostname
	}

	if wd, err := os.Getwd(); err == nil {
		meta.WorkingDir = wd
	}

	return meta
}

// generateCrashID returns crash-{timestamp}-{shortHash}.
func generateCrashID(timestamp time.Time, panicValue string) string {
	hash := sha256.Sum256(fmt.Appendf(nil, "%d-%s", timestamp.UnixNano(), panicValue))

	return fmt.Sprintf("crash-%s-%s", timestamp.Format("20060102T150405"),
		hex.EncodeToString(hash[:])[:shortIDLength])
}
