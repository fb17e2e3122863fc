package logger

import "log/slog"

// Level represents the log level.
type Level int

const (
	// LevelDebug represents debug-level logging (most verbose).
	LevelDebug Level = iota

	// LevelInfo represents info-level logging (standard verbosity).
	LevelInfo

	// LevelWarn represents warnings that do not change the outcome of a run.
	LevelWarn

	// LevelError represents error-level logging (least verbose).
	LevelError
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ToSlogLevel converts Level to slog.Level.
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromFlags determines the file log level from the verbose flag.
func LevelFromFlags(verbose bool) Level {
	if verbose {
		return LevelDebug
	}

	return LevelInfo
}

// ConsoleLevelFromFlags determines the stderr echo level from the verbose flag.
// Without --verbose only warnings and errors reach the terminal; everything is in the log file.
func ConsoleLevelFromFlags(verbose bool) Level {
	if verbose {
		return LevelDebug
	}

	return LevelWarn
}
