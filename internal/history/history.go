// Package history keeps an append-only JSONL record of updater runs.
package history

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// FileName is the name of the history file inside the state directory.
	FileName = "history.jsonl"

	filePerms = 0o600
	dirPerms  = 0o700

	// maxLineBytes bounds a single record; longer lines are skipped.
	maxLineBytes = 256 * 1024
)

// Operation types.
const (
	OperationUpdate   = "update"
	OperationCheck    = "check"
	OperationRollback = "rollback"
	OperationPrune    = "prune"
)

// Entry is one recorded run.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`

	// Outcome is the updater outcome, e.g. Installed or PartiallyInstalled.
	Outcome string `json:"outcome"`

	// From is the version installed before the run, "none" or "unknown".
	From string `json:"from,omitempty"`

	// To is the release version the run targeted.
	To string `json:"to,omitempty"`

	Source string `json:"source,omitempty"`

	// Backup is the backup generation created by the run.
	Backup string `json:"backup,omitempty"`

	User     string `json:"user,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Filter selects entries in Query. Zero fields match everything.
type Filter struct {
	Operation string
	Outcome   string
	Since     time.Time
	// Success filters by success/failure (nil = all).
	Success *bool
	// Limit keeps only the most recent entries (0 = all).
	Limit int
}

// Recorder stores and retrieves run history.
type Recorder interface {
	Record(entry Entry) error
	Query(filter Filter) ([]Entry, error)
}

// JSONLRecorder implements Recorder on a JSONL file.
type JSONLRecorder struct {
	path string
	now  func() time.Time

	// mu serializes access within the process.
	mu sync.Mutex
}

// NewJSONLRecorder creates a recorder writing to path.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if path == "" {
		return nil, errors.New("history path cannot be empty")
	}

	return &JSONLRecorder{path: path, now: time.Now}, nil
}

// Path returns the history file location.
func (r *JSONLRecorder) Path() string {
	return r.path
}

// Record appends entry, filling in the timestamp, user and hostname when unset.
func (r *JSONLRecorder) Record(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}

	if entry.User == "" {
		entry.User = currentUser()
	}

	if entry.Hostname == "" {
		entry.Hostname = hostname()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), dirPerms); err != nil {
		return errors.Wrap(err, "failed to create history directory")
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerms)
	if err != nil {
		return errors.Wrap(err, "failed to open history file")
	}

	if err := json.NewEncoder(file).Encode(entry); err != nil {
		_ = file.Close()

		return errors.Wrap(err, "failed to encode history entry")
	}

	return errors.Wrap(file.Close(), "failed to close history file")
}

// Query returns matching entries, oldest first.
func (r *JSONLRecorder) Query(filter Filter) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to open history file")
	}

	defer file.Close() //nolint:errcheck // read-only

	entries := []Entry{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		var entry Entry

		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		if filter.matches(entry) {
			entries = append(entries, entry)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read history file")
	}

	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[len(entries)-filter.Limit:]
	}

	return entries, nil
}

func (f Filter) matches(entry Entry) bool {
	if f.Operation != "" && entry.Operation != f.Operation {
		return false
	}

	if f.Outcome != "" && entry.Outcome != f.Outcome {
		return false
	}

	if !f.Since.IsZero() && entry.Timestamp.Before(f.Since) {
		return false
	}

	if f.Success != nil && entry.Success != *f.Success {
		return false
	}

	return true
}

// currentUser prefers the invoking user when running under sudo.
func currentUser() string {
	for _, key := range []string{"SUDO_USER", "USER", "USERNAME"} {
		if user := os.Getenv(key); user != "" {
			return user
		}
	}

	return "unknown"
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return name
}
