package runner

import (
	"errors"
	"fmt"
)

// ExitNotFound is returned when the wrapped binary cannot be found or
// executed. It mirrors the shell's "command not found" status.
const ExitNotFound = 127

var (
	// ErrNotFound means no file exists at the resolved binary path.
	ErrNotFound = errors.New("binary not found")
	// ErrNotExecutable means the path exists but cannot be executed.
	ErrNotExecutable = errors.New("binary is not executable")
	// ErrSelfExec means the binary path resolves to the wrapper itself.
	ErrSelfExec = errors.New("binary path points back at the wrapper")
)

// ExecutionError reports that the wrapped binary could not be started.
type ExecutionError struct {
	Path string
	Code int
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("cannot run %s: %v", e.Path, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func notRunnable(path string, err error) *ExecutionError {
	return &ExecutionError{Path: path, Code: ExitNotFound, Err: err}
}
