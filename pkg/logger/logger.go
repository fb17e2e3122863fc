// Package logger provides structured logging for cursor-updater runs.
//
// Every run appends to a log file in the state directory. Warnings and errors
// are echoed to the terminal as well; --verbose echoes everything.
package logger

import (
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
)

const (
	// LogFilePermissions defines the file permissions for log files (owner read/write only).
	LogFilePermissions = 0o600

	// LogDirPermissions defines the permissions for the log directory.
	LogDirPermissions = 0o700
)

// Logger provides structured logging interface.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...any)

	// With returns a new logger with additional key-value pairs.
	With(keysAndValues ...any) Logger
}

// SlogAdapter implements Logger on top of log/slog with CustomHandler output.
type SlogAdapter struct {
	logger  *slog.Logger
	closers []io.Closer
}

// Options configures NewLogger.
type Options struct {
	// FilePath is the log file. Empty disables file output.
	FilePath string

	// FileLevel is the minimum level written to the file.
	FileLevel Level

	// Console receives echoed entries. Nil disables echoing.
	Console io.Writer

	// ConsoleLevel is the minimum level echoed to Console.
	ConsoleLevel Level
}

// NewLogger creates a logger writing to the configured file and console.
func NewLogger(opts Options) (*SlogAdapter, error) {
	var (
		handlers []slog.Handler
		closers  []io.Closer
	)

	if opts.FilePath != "" {
		fh, err := NewFileHandler(opts.FilePath, opts.FileLevel)
		if err != nil {
			return nil, errors.Wrapf(err, "initializing log file %s", opts.FilePath)
		}

		handlers = append(handlers, fh)
		closers = append(closers, fh)
	}

	if opts.Console != nil {
		handlers = append(handlers, NewWriterHandler(opts.Console, opts.ConsoleLevel))
	}

	if len(handlers) == 0 {
		return &SlogAdapter{logger: slog.New(slog.DiscardHandler)}, nil
	}

	return &SlogAdapter{
		logger:  slog.New(&fanoutHandler{handlers: handlers}),
		closers: closers,
	}, nil
}

// NewFileLoggerWithWriter creates a logger writing to w at the given level.
func NewFileLoggerWithWriter(w io.Writer, level Level) *SlogAdapter {
	return &SlogAdapter{logger: slog.New(NewWriterHandler(w, level))}
}

// Debug logs debug-level messages.
func (l *SlogAdapter) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

// Info logs info-level messages.
func (l *SlogAdapter) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

// Warn logs warning-level messages.
func (l *SlogAdapter) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

// Error logs error-level messages.
func (l *SlogAdapter) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

// With returns a new logger with additional base key-value pairs.
//
//nolint:ireturn // With is intended to return an interface for chaining
func (l *SlogAdapter) With(keysAndValues ...any) Logger {
	return &SlogAdapter{logger: l.logger.With(keysAndValues...)}
}

// Close closes the log file, if any.
func (l *SlogAdapter) Close() error {
	var errs []error

	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	l.closers = nil

	return errors.Join(errs...)
}

// NoOpLogger is a logger that does nothing.
type NoOpLogger struct{}

// NewNoOpLogger creates a new NoOpLogger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug does nothing.
func (*NoOpLogger) Debug(string, ...any) {}

// Info does nothing.
func (*NoOpLogger) Info(string, ...any) {}

// Warn does nothing.
func (*NoOpLogger) Warn(string, ...any) {}

// Error does nothing.
func (*NoOpLogger) Error(string, ...any) {}

// With returns the same NoOpLogger.
//
//nolint:ireturn // With is intended to return an interface for chaining
func (n *NoOpLogger) With(...any) Logger {
	return n
}
