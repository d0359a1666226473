package runner

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// DefaultBinaryName is the wrapped binary's file name under libexec.
const DefaultBinaryName = "ask"

// Resolve picks the binary to wrap. A configured path wins; a bare name is
// looked up on PATH. Without configuration the binary is expected at
// <wrapper dir>/../libexec/ask, which is where the formula installs it.
func Resolve(configured, self string) (string, error) {
	if configured != "" {
		if !strings.ContainsRune(configured, filepath.Separator) {
			p, err := exec.LookPath(configured)
			if err != nil {
				return "", notRunnable(configured, ErrNotFound)
			}
			return p, nil
		}
		return configured, nil
	}
	if real, err := filepath.EvalSymlinks(self); err == nil {
		self = real
	}
	return filepath.Join(filepath.Dir(self), "..", "libexec", DefaultBinaryName), nil
}

// Check verifies that path names an executable regular file other than the
// wrapper itself. It returns an *ExecutionError otherwise.
func Check(path, self string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notRunnable(path, ErrNotFound)
		}
		return notRunnable(path, err)
	}
	if info.IsDir() {
		return notRunnable(path, ErrNotExecutable)
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return notRunnable(path, ErrNotExecutable)
	}
	if self != "" {
		if selfInfo, err := os.Stat(self); err == nil && os.SameFile(info, selfInfo) {
			return notRunnable(path, ErrSelfExec)
		}
	}
	return nil
}
