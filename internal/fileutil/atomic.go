// Package fileutil holds the read-modify-write helpers shared by the log,
// shell hook and receipt code. Every rewrite goes through a temp file in the
// target's directory followed by os.Rename, so a reader never observes a
// half-written file.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Resolve follows symlinks on path so that a rename replaces the real file
// and leaves a symlinked dotfile intact. A path that does not exist yet is
// returned unchanged.
func Resolve(path string) (string, error) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		return "", err
	}
	return real, nil
}

// WriteFile atomically replaces path with data. The permission bits of an
// existing file are kept; perm is used only when the file is new.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	target, err := Resolve(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if info, statErr := os.Stat(target); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err = os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Update reads path, passes its content to fn and, when fn reports a change,
// atomically writes the result back. A missing file is passed to fn as nil
// content with exists=false.
func Update(path string, perm os.FileMode, fn func(content []byte, exists bool) ([]byte, bool, error)) (bool, error) {
	content, err := os.ReadFile(path)
	exists := true
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return false, err
		}
		exists = false
	}

	next, changed, err := fn(content, exists)
	if err != nil || !changed {
		return false, err
	}
	if err := WriteFile(path, next, perm); err != nil {
		return false, err
	}
	return true, nil
}
