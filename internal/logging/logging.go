// Package logging builds the stderr logger shared by the ask wrapper and the
// asklog commands.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w. Only warnings and errors are shown
// unless verbose is set, so the wrapped command's output stays clean.
func New(w io.Writer, prefix string, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: verbose,
	})
	logger.SetLevel(log.WarnLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops everything. Used by tests and by
// callers that have no stderr to report to.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
