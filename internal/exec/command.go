// Package exec provides abstractions for executing external commands.
package exec

//go:generate mockgen -source=command.go -destination=command_mock.go -package=exec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"
)

// CommandResult contains the result of a command execution.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Success reports whether the command ran and exited with status 0.
func (r CommandResult) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Failed reports whether the command could not run or exited non-zero.
func (r CommandResult) Failed() bool {
	return !r.Success()
}

// CommandRunner executes external commands with timeout and output capture.
type CommandRunner interface {
	// Run executes a command and returns the result.
	Run(ctx context.Context, name string, args ...string) CommandResult

	// RunInDir executes a command with dir as its working directory.
	RunInDir(ctx context.Context, dir, name string, args ...string) CommandResult

	// RunAttached executes a command wired to the process terminal, for
	// commands that may prompt (sudo -v). Output is not captured.
	RunAttached(ctx context.Context, name string, args ...string) CommandResult
}

// commandRunner implements CommandRunner.
type commandRunner struct {
	defaultTimeout time.Duration
}

// NewCommandRunner creates a new CommandRunner with the given default timeout.
// A zero timeout leaves deadlines to the caller's context.
func NewCommandRunner(defaultTimeout time.Duration) CommandRunner {
	return &commandRunner{
		defaultTimeout: defaultTimeout,
	}
}

// Run executes a command and returns the result.
func (r *commandRunner) Run(ctx context.Context, name string, args ...string) CommandResult {
	return r.run(ctx, "", name, args...)
}

// RunInDir executes a command in dir.
func (r *commandRunner) RunInDir(ctx context.Context, dir, name string, args ...string) CommandResult {
	return r.run(ctx, dir, name, args...)
}

// RunAttached executes a command using the process stdin, stdout and stderr.
func (*commandRunner) RunAttached(ctx context.Context, name string, args ...string) CommandResult {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return resultFrom(name, cmd.Run(), "", "")
}

func (r *commandRunner) run(ctx context.Context, dir, name string, args ...string) CommandResult {
	if r.defaultTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.defaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	return resultFrom(name, cmd.Run(), stdout.String(), stderr.String())
}

func resultFrom(name string, err error, stdout, stderr string) CommandResult {
	result := CommandResult{
		Stdout: stdout,
		Stderr: stderr,
	}

	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Err = errors.Wrapf(err, "%s exited with status %d", name, result.ExitCode)

		return result
	}

	result.ExitCode = -1
	result.Err = errors.Wrapf(err, "executing %s", name)

	return result
}
