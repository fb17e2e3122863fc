package exec

//go:generate mockgen -source=tool.go -destination=tool_mock.go -package=exec

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SystemDirs are searched after PATH. Administrative tools live there and
// are often missing from an unprivileged user's PATH.
var SystemDirs = []string{"/usr/local/sbin", "/usr/sbin", "/sbin"}

// ToolChecker checks for tool availability.
type ToolChecker interface {
	// IsAvailable checks if a tool is available in PATH or the system dirs.
	IsAvailable(tool string) bool

	// RequireTool returns an error if the tool is not available.
	RequireTool(tool string) error

	// FindTool returns the first available tool from the list of alternatives.
	// Returns empty string if none are available.
	FindTool(alternatives ...string) string
}

// toolChecker implements ToolChecker.
type toolChecker struct {
	extraDirs []string
}

// NewToolChecker creates a ToolChecker that also searches SystemDirs.
func NewToolChecker() *toolChecker {
	return NewToolCheckerWithDirs(SystemDirs...)
}

// NewToolCheckerWithDirs creates a ToolChecker that searches dirs after PATH.
func NewToolCheckerWithDirs(dirs ...string) *toolChecker {
	return &toolChecker{extraDirs: dirs}
}

// Lookup returns the path of tool, or "" when it cannot be found.
func (t *toolChecker) Lookup(tool string) string {
	if path, err := exec.LookPath(tool); err == nil {
		return path
	}

	if strings.ContainsRune(tool, filepath.Separator) {
		return ""
	}

	for _, dir := range t.extraDirs {
		path := filepath.Join(dir, tool)

		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
			return path
		}
	}

	return ""
}

// IsAvailable checks if a tool is available.
func (t *toolChecker) IsAvailable(tool string) bool {
	return t.Lookup(tool) != ""
}

// RequireTool returns an error if the tool is not available.
func (t *toolChecker) RequireTool(tool string) error {
	if !t.IsAvailable(tool) {
		return &ToolNotFoundError{Tool: tool, Searched: t.extraDirs}
	}

	return nil
}

// FindTool returns the first available tool from the list of alternatives.
func (t *toolChecker) FindTool(alternatives ...string) string {
	for _, tool := range alternatives {
		if t.IsAvailable(tool) {
			return tool
		}
	}

	return ""
}

// ToolNotFoundError is returned when a required tool is not found.
type ToolNotFoundError struct {
	Tool string
	// Searched lists the directories tried besides PATH.
	Searched []string
}

// Error returns the error message.
func (e *ToolNotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return "tool not found in PATH: " + e.Tool
	}

	return "tool not found in PATH or " + strings.Join(e.Searched, ":") + ": " + e.Tool
}
