package installer

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoBackups is returned when a rollback finds no backup generation.
	ErrNoBackups = errors.New("no backups found")

	// ErrInvalidKeep is returned when pruning would remove the newest backup.
	ErrInvalidKeep = errors.New("at least one backup must be kept")
)

// ExtractionError is a failure of the external bundle extractor.
type ExtractionError struct {
	Artifact string
	Output   string
	Err      error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extracting %s: %v", e.Artifact, e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}

	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PermissionError is a failure of a privileged operation.
type PermissionError struct {
	Op   string
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// StepError records which installation step failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
