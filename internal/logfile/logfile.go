// Package logfile maintains the terminal output log that the ask wrapper
// appends to: size-based rotation, line-count trimming and the read side used
// by `asklog logs`.
package logfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

const (
	// DefaultName is the log file name under $HOME.
	DefaultName = "terminal_output.log"
	// DefaultMaxBytes is the size at which the log is archived (10 MiB).
	DefaultMaxBytes int64 = 10 * 1024 * 1024
	// DefaultMaxLines is the number of most recent lines kept by Trim.
	DefaultMaxLines = 10000
)

// DefaultPath returns $HOME/terminal_output.log for the given home directory.
func DefaultPath(home string) string {
	return filepath.Join(home, DefaultName)
}

// Limits bounds the log file. A zero or negative field disables that bound.
type Limits struct {
	MaxBytes int64
	MaxLines int
}

// DefaultLimits returns the stock 10 MiB / 10,000 line bounds.
func DefaultLimits() Limits {
	return Limits{MaxBytes: DefaultMaxBytes, MaxLines: DefaultMaxLines}
}

// Warning reports a best-effort log maintenance step that failed. Callers log
// it and carry on; it never aborts the wrapped command.
type Warning struct {
	Op   string
	Path string
	Err  error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("log %s %s: %v", w.Op, w.Path, w.Err)
}

func (w *Warning) Unwrap() error {
	return w.Err
}

// Result describes what Normalize changed.
type Result struct {
	Archive string // non-empty when the log was rotated
	Trimmed bool
}

// Normalize rotates and then trims the log at path. Rotation always runs
// first so a freshly rotated (empty) file is never rewritten by Trim. Both
// passes run even if the first one fails; failures are joined into the
// returned error.
func Normalize(path string, lim Limits, now time.Time) (Result, error) {
	var res Result
	var errs []error

	archive, err := Rotate(path, lim.MaxBytes, now)
	if err != nil {
		errs = append(errs, err)
	}
	res.Archive = archive

	trimmed, err := Trim(path, lim.MaxLines)
	if err != nil {
		errs = append(errs, err)
	}
	res.Trimmed = trimmed

	return res, errors.Join(errs...)
}
