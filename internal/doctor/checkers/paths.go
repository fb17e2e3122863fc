package checkers

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/smykla-skalski/cursor-updater/internal/doctor"
)

// DirChecker verifies that a directory the updater writes to is usable.
type DirChecker struct {
	name string
	path string
}

// NewDirChecker creates a DirChecker for the named directory.
func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{name: name, path: path}
}

// Name returns the name of the check
func (c *DirChecker) Name() string { return c.name + " directory" }

// Category returns the category of the check
func (*DirChecker) Category() doctor.Category { return doctor.CategoryPaths }

// Check verifies the directory, or its nearest existing parent, is writable.
func (c *DirChecker) Check(_ context.Context) doctor.CheckResult {
	info, err := os.Stat(c.path)
	if err == nil {
		if !info.IsDir() {
			return doctor.FailError(c.Name(), c.path+" exists but is not a directory")
		}

		if unix.Access(c.path, unix.W_OK) != nil {
			return doctor.FailError(c.Name(), c.path+" is not writable")
		}

		return doctor.Pass(c.Name(), c.path)
	}

	parent := nearestExisting(c.path)
	if unix.Access(parent, unix.W_OK) != nil {
		return doctor.FailError(c.Name(), c.path+" cannot be created").
			WithDetails(parent + " is not writable")
	}

	return doctor.Pass(c.Name(), c.path+" (created on first use)")
}

func nearestExisting(path string) string {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil || dir == filepath.Dir(dir) {
			return dir
		}
	}
}
