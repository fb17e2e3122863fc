// Package doctor provides health checks for the Cursor installation and the
// updater's environment.
package doctor

import "context"

// Severity represents the severity level of a check result
type Severity string

const (
	// SeverityError means an update is expected to fail
	SeverityError Severity = "error"
	// SeverityWarning means an update works but something is degraded
	SeverityWarning Severity = "warning"
	// SeverityInfo indicates informational output
	SeverityInfo Severity = "info"
)

// Status represents the status of a health check
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Category groups related checks.
type Category string

const (
	// CategoryInstall checks the live installation and its backups
	CategoryInstall Category = "install"
	// CategoryConfig checks the configuration file
	CategoryConfig Category = "config"
	// CategoryTools checks for external commands the updater runs
	CategoryTools Category = "tools"
	// CategoryPaths checks the updater's own state and cache directories
	CategoryPaths Category = "paths"
)

// categoryOrder is the order results are reported in.
var categoryOrder = []Category{CategoryConfig, CategoryInstall, CategoryTools, CategoryPaths}

// CheckResult represents the result of a health check
type CheckResult struct {
	Name     string
	Category Category
	Severity Severity
	Status   Status
	Message  string
	// Details holds extra context, such as the command that fixes the problem.
	Details []string
}

// HealthChecker performs a health check and returns a result
type HealthChecker interface {
	Name() string
	Category() Category
	Check(ctx context.Context) CheckResult
}

// NewCheckResult creates a new CheckResult with the given parameters
func NewCheckResult(name string, severity Severity, status Status, message string) CheckResult {
	return CheckResult{
		Name:     name,
		Severity: severity,
		Status:   status,
		Message:  message,
		Details:  []string{},
	}
}

// WithDetails adds details to a CheckResult
func (r CheckResult) WithDetails(details ...string) CheckResult {
	r.Details = append(r.Details, details...)
	return r
}

// Pass creates a passing check result
func Pass(name, message string) CheckResult {
	return NewCheckResult(name, SeverityInfo, StatusPass, message)
}

// FailError creates a failing check result with error severity
func FailError(name, message string) CheckResult {
	return NewCheckResult(name, SeverityError, StatusFail, message)
}

// FailWarning creates a failing check result with warning severity
func FailWarning(name, message string) CheckResult {
	return NewCheckResult(name, SeverityWarning, StatusFail, message)
}

// Skip creates a skipped check result
func Skip(name, message string) CheckResult {
	return NewCheckResult(name, SeverityInfo, StatusSkipped, message)
}

// IsError returns true if the result is an error
func (r CheckResult) IsError() bool {
	return r.Status == StatusFail && r.Severity == SeverityError
}

// IsWarning returns true if the result is a warning
func (r CheckResult) IsWarning() bool {
	return r.Status == StatusFail && r.Severity == SeverityWarning
}

// IsPassed returns true if the check passed
func (r CheckResult) IsPassed() bool {
	return r.Status == StatusPass
}

// Summary counts results by outcome.
type Summary struct {
	Passed   int
	Warnings int
	Errors   int
	Skipped  int
}

// Summarize counts results by outcome.
func Summarize(results []CheckResult) Summary {
	var s Summary

	for _, r := range results {
		switch {
		case r.IsPassed():
			s.Passed++
		case r.IsError():
			s.Errors++
		case r.IsWarning():
			s.Warnings++
		default:
			s.Skipped++
		}
	}

	return s
}
